package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound means the notification does not exist or belongs to
// another user.
var ErrNotFound = errors.New("not found")

type AuditRepository interface {
	Create(ctx context.Context, entry *AuditEntry) error
	List(ctx context.Context, filter AuditFilter, limit, offset int) ([]*AuditEntry, int, error)
}

type NotificationRepository interface {
	// CreateBatch persists one notification per recipient.
	CreateBatch(ctx context.Context, notifications []*Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, int, error)
	// MarkRead stamps read_at on the user's notification. Returns
	// ErrNotFound when the id does not exist or is not theirs. Marking an
	// already-read notification is a no-op success.
	MarkRead(ctx context.Context, id uuid.UUID, userID string) (*Notification, error)
}
