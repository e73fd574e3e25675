package events

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the emitter. Every state change writes exactly
// one entry; automatic and human approvals are distinguishable by action.
const (
	ActionRequestCreated = "AUTHORIZATION_CREATED"
	ActionAutoApproved   = "AUTHORIZATION_AUTO_APPROVED"
	ActionApproved       = "AUTHORIZATION_APPROVED"
	ActionRejected       = "AUTHORIZATION_REJECTED"
	ActionDelivered      = "SERVICE_DELIVERED"
)

// Notification types, matched by client UIs to icons and deep links.
const (
	NotifyAuthorizationRequest = "AUTHORIZATION_REQUEST"
	NotifyAuthorizationResult  = "AUTHORIZATION_RESULT"
	NotifyServiceDelivered     = "SERVICE_DELIVERED"
)

// EntityAuthorizationRequest is the entity type audit entries attach to.
const EntityAuthorizationRequest = "authorization_request"

// AuditEntry is one append-only line in the audit trail. Actor is a user
// id, or "system" for the automated engine.
type AuditEntry struct {
	ID         uuid.UUID              `db:"id" json:"id"`
	Actor      string                 `db:"actor" json:"actor"`
	Action     string                 `db:"action" json:"action"`
	EntityType string                 `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID              `db:"entity_id" json:"entity_id"`
	Details    map[string]interface{} `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time              `db:"created_at" json:"created_at"`
}

// Notification is a user-facing message. The related-entity pair lets a
// client deep-link from the notification to the record it is about.
// ReadAt is nil until the user marks it read.
type Notification struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	UserID            string     `db:"user_id" json:"user_id"`
	Type              string     `db:"type" json:"type"`
	Title             string     `db:"title" json:"title"`
	Message           string     `db:"message" json:"message"`
	RelatedEntityType string     `db:"related_entity_type" json:"related_entity_type"`
	RelatedEntityID   uuid.UUID  `db:"related_entity_id" json:"related_entity_id"`
	ReadAt            *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// AuditFilter narrows an audit-log listing. Zero values mean no constraint.
type AuditFilter struct {
	EntityType string
	EntityID   uuid.UUID
	Action     string
}
