package events

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexahealth/priorauth/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// =========== Audit Repository ===========

type auditRepoPG struct{ pool *pgxpool.Pool }

func NewAuditRepoPG(pool *pgxpool.Pool) AuditRepository { return &auditRepoPG{pool: pool} }

func (r *auditRepoPG) Create(ctx context.Context, entry *AuditEntry) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO audit_log (id, actor, action, entity_type, entity_id, details, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		entry.ID, entry.Actor, entry.Action, entry.EntityType, entry.EntityID,
		entry.Details, entry.CreatedAt)
	return err
}

func (r *auditRepoPG) List(ctx context.Context, filter AuditFilter, limit, offset int) ([]*AuditEntry, int, error) {
	q := conn(ctx, r.pool)

	var where []string
	var args []interface{}
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, clause+"$"+strconv.Itoa(len(args)))
	}
	if filter.EntityType != "" {
		add("entity_type = ", filter.EntityType)
	}
	if filter.EntityID != uuid.Nil {
		add("entity_id = ", filter.EntityID)
	}
	if filter.Action != "" {
		add("action = ", filter.Action)
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := q.Query(ctx, `
		SELECT id, actor, action, entity_type, entity_id, details, created_at
		FROM audit_log`+whereSQL+`
		ORDER BY created_at DESC, id DESC
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.EntityType, &e.EntityID,
			&e.Details, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}

// =========== Notification Repository ===========

type notificationRepoPG struct{ pool *pgxpool.Pool }

func NewNotificationRepoPG(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepoPG{pool: pool}
}

func (r *notificationRepoPG) CreateBatch(ctx context.Context, notifications []*Notification) error {
	q := conn(ctx, r.pool)
	for _, n := range notifications {
		n.ID = uuid.New()
		n.CreatedAt = time.Now().UTC()
		if _, err := q.Exec(ctx, `
			INSERT INTO notifications (id, user_id, type, title, message,
				related_entity_type, related_entity_id, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			n.ID, n.UserID, n.Type, n.Title, n.Message,
			n.RelatedEntityType, n.RelatedEntityID, n.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *notificationRepoPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, int, error) {
	q := conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT id, user_id, type, title, message,
			related_entity_type, related_entity_id, read_at, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.RelatedEntityType, &n.RelatedEntityID, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &n)
	}
	return items, total, rows.Err()
}

func (r *notificationRepoPG) MarkRead(ctx context.Context, id uuid.UUID, userID string) (*Notification, error) {
	var n Notification
	err := conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE notifications
		SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, type, title, message,
			related_entity_type, related_entity_id, read_at, created_at`,
		id, userID).Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
		&n.RelatedEntityType, &n.RelatedEntityID, &n.ReadAt, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
