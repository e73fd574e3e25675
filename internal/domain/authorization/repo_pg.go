package authorization

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

	"github.com/nexahealth/priorauth/internal/domain/catalog"
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

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// =========== Request Repository ===========

type requestRepoPG struct{ pool *pgxpool.Pool }

func NewRequestRepoPG(pool *pgxpool.Pool) RequestRepository { return &requestRepoPG{pool: pool} }

const requestCols = `id, patient_id, hospital_id, hmo_id, coverage_plan_id,
	requested_by, diagnosis, notes, status, authorization_code, created_at, reviewed_at`

func scanRequest(row pgx.Row) (*AuthorizationRequest, error) {
	var r AuthorizationRequest
	err := row.Scan(&r.ID, &r.PatientID, &r.HospitalID, &r.HMOID, &r.CoveragePlanID,
		&r.RequestedBy, &r.Diagnosis, &r.Notes, &r.Status, &r.AuthorizationCode,
		&r.CreatedAt, &r.ReviewedAt)
	return &r, err
}

func (r *requestRepoPG) Create(ctx context.Context, req *AuthorizationRequest) error {
	q := conn(ctx, r.pool)
	req.ID = uuid.New()
	req.Status = StatusPending
	req.CreatedAt = time.Now().UTC()

	_, err := q.Exec(ctx, `
		INSERT INTO authorization_requests (id, patient_id, hospital_id, hmo_id,
			coverage_plan_id, requested_by, diagnosis, notes, status,
			authorization_code, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		req.ID, req.PatientID, req.HospitalID, req.HMOID, req.CoveragePlanID,
		req.RequestedBy, req.Diagnosis, req.Notes, req.Status,
		req.AuthorizationCode, req.CreatedAt)
	if isUniqueViolation(err, "authorization_requests_authorization_code_key") {
		return ErrCodeCollision
	}
	if err != nil {
		return err
	}

	for _, rs := range req.Services {
		rs.ID = uuid.New()
		rs.RequestID = req.ID
		if _, err := q.Exec(ctx, `
			INSERT INTO requested_services (id, request_id, service_id)
			VALUES ($1,$2,$3)`, rs.ID, rs.RequestID, rs.ServiceID); err != nil {
			return err
		}
	}
	return nil
}

func (r *requestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*AuthorizationRequest, error) {
	q := conn(ctx, r.pool)
	req, err := scanRequest(q.QueryRow(ctx,
		`SELECT `+requestCols+` FROM authorization_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadAssociations(ctx, q, []*AuthorizationRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepoPG) GetByCode(ctx context.Context, code string) (*AuthorizationRequest, error) {
	q := conn(ctx, r.pool)
	req, err := scanRequest(q.QueryRow(ctx,
		`SELECT `+requestCols+` FROM authorization_requests WHERE authorization_code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadAssociations(ctx, q, []*AuthorizationRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*AuthorizationRequest, int, error) {
	q := conn(ctx, r.pool)

	var where []string
	var args []interface{}
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, clause+"$"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		add("status = ", filter.Status)
	}
	if filter.PatientID != uuid.Nil {
		add("patient_id = ", filter.PatientID)
	}
	if filter.HospitalID != uuid.Nil {
		add("hospital_id = ", filter.HospitalID)
	}
	if filter.HMOID != uuid.Nil {
		add("hmo_id = ", filter.HMOID)
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM authorization_requests`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := q.Query(ctx,
		`SELECT `+requestCols+` FROM authorization_requests`+whereSQL+
			` ORDER BY created_at DESC LIMIT $`+strconv.Itoa(len(args)-1)+
			` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*AuthorizationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadAssociations(ctx, q, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// loadAssociations populates the requested-service sets (with catalog
// service rows) and the most recent review for the given requests.
func (r *requestRepoPG) loadAssociations(ctx context.Context, q queryable, reqs []*AuthorizationRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*AuthorizationRequest, len(reqs))
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, req := range reqs {
		byID[req.ID] = req
		ids = append(ids, req.ID)
	}

	rows, err := q.Query(ctx, `
		SELECT rs.id, rs.request_id, rs.service_id,
			s.id, s.name, s.description, s.cost, s.created_at
		FROM requested_services rs
		JOIN services s ON s.id = rs.service_id
		WHERE rs.request_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rs RequestedService
		var svc catalog.Service
		if err := rows.Scan(&rs.ID, &rs.RequestID, &rs.ServiceID,
			&svc.ID, &svc.Name, &svc.Description, &svc.Cost, &svc.CreatedAt); err != nil {
			return err
		}
		rs.Service = &svc
		byID[rs.RequestID].Services = append(byID[rs.RequestID].Services, &rs)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	reviewRows, err := q.Query(ctx, `
		SELECT DISTINCT ON (request_id)
			id, request_id, reviewer_kind, reviewer_id, status, notes, created_at
		FROM authorization_reviews
		WHERE request_id = ANY($1)
		ORDER BY request_id, created_at DESC, id DESC`, ids)
	if err != nil {
		return err
	}
	defer reviewRows.Close()
	for reviewRows.Next() {
		review, err := scanReview(reviewRows)
		if err != nil {
			return err
		}
		byID[review.RequestID].LastReview = review
	}
	return reviewRows.Err()
}

func (r *requestRepoPG) Transition(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE authorization_requests
		SET status = $3, reviewed_at = NOW()
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// =========== Review Repository ===========

type reviewRepoPG struct{ pool *pgxpool.Pool }

func NewReviewRepoPG(pool *pgxpool.Pool) ReviewRepository { return &reviewRepoPG{pool: pool} }

func scanReview(row pgx.Row) (*AuthorizationReview, error) {
	var rev AuthorizationReview
	var reviewerID *string
	err := row.Scan(&rev.ID, &rev.RequestID, &rev.Reviewer.Kind, &reviewerID,
		&rev.Status, &rev.Notes, &rev.CreatedAt)
	if reviewerID != nil {
		rev.Reviewer.UserID = *reviewerID
	}
	return &rev, err
}

func (r *reviewRepoPG) Create(ctx context.Context, review *AuthorizationReview) error {
	review.ID = uuid.New()
	review.CreatedAt = time.Now().UTC()
	var reviewerID *string
	if review.Reviewer.Kind == ReviewerKindHuman {
		reviewerID = &review.Reviewer.UserID
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO authorization_reviews (id, request_id, reviewer_kind,
			reviewer_id, status, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		review.ID, review.RequestID, review.Reviewer.Kind, reviewerID,
		review.Status, review.Notes, review.CreatedAt)
	return err
}

func (r *reviewRepoPG) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*AuthorizationReview, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, request_id, reviewer_kind, reviewer_id, status, notes, created_at
		FROM authorization_reviews
		WHERE request_id = $1
		ORDER BY created_at DESC, id DESC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AuthorizationReview
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rev)
	}
	return items, rows.Err()
}

// =========== Delivery Repository ===========

type deliveryRepoPG struct{ pool *pgxpool.Pool }

func NewDeliveryRepoPG(pool *pgxpool.Pool) DeliveryRepository { return &deliveryRepoPG{pool: pool} }

func (r *deliveryRepoPG) Create(ctx context.Context, d *ServiceDelivery) error {
	d.ID = uuid.New()
	d.DeliveredAt = time.Now().UTC()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO service_deliveries (id, request_id, service_id, delivered_by, delivered_at)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.RequestID, d.ServiceID, d.DeliveredBy, d.DeliveredAt)
	if isUniqueViolation(err, "service_deliveries_request_id_service_id_key") {
		return &ValidationError{Reason: ReasonAlreadyDelivered}
	}
	return err
}

func (r *deliveryRepoPG) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*ServiceDelivery, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, request_id, service_id, delivered_by, delivered_at
		FROM service_deliveries
		WHERE request_id = $1
		ORDER BY delivered_at DESC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ServiceDelivery
	for rows.Next() {
		var d ServiceDelivery
		if err := rows.Scan(&d.ID, &d.RequestID, &d.ServiceID, &d.DeliveredBy, &d.DeliveredAt); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}
