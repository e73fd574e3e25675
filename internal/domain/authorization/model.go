package authorization

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nexahealth/priorauth/internal/domain/catalog"
)

// Status is the lifecycle state of an authorization request.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusAutoApproved Status = "AUTO_APPROVED"
	StatusApproved     Status = "APPROVED"
	StatusRejected     Status = "REJECTED"
	StatusCancelled    Status = "CANCELLED"
	StatusExpired      Status = "EXPIRED"
)

var validStatuses = map[Status]bool{
	StatusPending: true, StatusAutoApproved: true, StatusApproved: true,
	StatusRejected: true, StatusCancelled: true, StatusExpired: true,
}

func (s Status) Valid() bool { return validStatuses[s] }

// Terminal reports whether the state admits no further review. CANCELLED and
// EXPIRED are reachable only through administrative paths outside this
// service, but once set they are just as final.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// AuthorizationRequest is the regulatory record of "patient needs these
// services, insurer must approve". The patient, hospital, HMO, and coverage
// plan references are snapshotted at creation and never change, even if the
// patient later switches plans.
type AuthorizationRequest struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	HospitalID        uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	HMOID             uuid.UUID  `db:"hmo_id" json:"hmo_id"`
	CoveragePlanID    uuid.UUID  `db:"coverage_plan_id" json:"coverage_plan_id"`
	RequestedBy       string     `db:"requested_by" json:"requested_by"`
	Diagnosis         string     `db:"diagnosis" json:"diagnosis"`
	Notes             *string    `db:"notes" json:"notes,omitempty"`
	Status            Status     `db:"status" json:"status"`
	AuthorizationCode string     `db:"authorization_code" json:"authorization_code"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	ReviewedAt        *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`

	// Expanded associations, populated on reads.
	Services   []*RequestedService  `json:"services,omitempty"`
	Patient    *catalog.Patient     `json:"patient,omitempty"`
	Hospital   *catalog.Hospital    `json:"hospital,omitempty"`
	LastReview *AuthorizationReview `json:"last_review,omitempty"`
}

// IncludesService reports whether the service was part of the request's
// fixed requested-service set.
func (r *AuthorizationRequest) IncludesService(serviceID uuid.UUID) bool {
	for _, rs := range r.Services {
		if rs.ServiceID == serviceID {
			return true
		}
	}
	return false
}

// RequestedService is one member of the request's immutable service set.
type RequestedService struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	RequestID uuid.UUID        `db:"request_id" json:"request_id"`
	ServiceID uuid.UUID        `db:"service_id" json:"service_id"`
	Service   *catalog.Service `json:"service,omitempty"`
}

// ReviewerKind discriminates who made a review decision.
type ReviewerKind string

const (
	ReviewerKindHuman  ReviewerKind = "human"
	ReviewerKindSystem ReviewerKind = "system"
)

// Reviewer is a tagged identity: either a human HMO reviewer or the
// automated engine. Consumers branch on Kind instead of comparing user ids
// against a magic sentinel string.
type Reviewer struct {
	Kind   ReviewerKind `json:"kind"`
	UserID string       `json:"user_id,omitempty"`
}

func HumanReviewer(userID string) Reviewer {
	return Reviewer{Kind: ReviewerKindHuman, UserID: userID}
}

func SystemReviewer() Reviewer {
	return Reviewer{Kind: ReviewerKindSystem}
}

// AuditActor renders the reviewer as an audit-log actor.
func (r Reviewer) AuditActor() string {
	if r.Kind == ReviewerKindSystem {
		return "system"
	}
	return r.UserID
}

// AuthorizationReview is one append-only decision event. The request's
// current status always mirrors its most recent review.
type AuthorizationReview struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RequestID uuid.UUID `db:"request_id" json:"request_id"`
	Reviewer  Reviewer  `json:"reviewer"`
	Status    Status    `db:"status" json:"status"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ServiceDelivery records that a requested service was rendered against an
// approved authorization. At most one delivery exists per requested service.
type ServiceDelivery struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RequestID   uuid.UUID `db:"request_id" json:"request_id"`
	ServiceID   uuid.UUID `db:"service_id" json:"service_id"`
	DeliveredBy string    `db:"delivered_by" json:"delivered_by"`
	DeliveredAt time.Time `db:"delivered_at" json:"delivered_at"`
}

// Validation reason codes returned to callers so UIs can render specific
// guidance rather than a generic failure.
const (
	ReasonInvalidCode        = "invalid_code"
	ReasonServiceNotIncluded = "service_not_included"
	ReasonCodeExpired        = "code_expired"
	ReasonAlreadyDelivered   = "already_delivered"
)

var reasonMessages = map[string]string{
	ReasonInvalidCode:        "Invalid or expired authorization code",
	ReasonServiceNotIncluded: "Service not included in this authorization",
	ReasonCodeExpired:        "Authorization code has expired",
	ReasonAlreadyDelivered:   "Service already delivered under this authorization",
}

// ReasonMessage returns the human-readable message for a reason code.
func ReasonMessage(reason string) string {
	if msg, ok := reasonMessages[reason]; ok {
		return msg
	}
	return reason
}

// ValidationResult is the outcome of presenting a code for a service.
// Invalid outcomes are data, not errors; Request is set only when valid.
type ValidationResult struct {
	Valid   bool                  `json:"valid"`
	Reason  string                `json:"reason,omitempty"`
	Message string                `json:"message,omitempty"`
	Request *AuthorizationRequest `json:"request,omitempty"`
}

func invalidResult(reason string) *ValidationResult {
	return &ValidationResult{Valid: false, Reason: reason, Message: ReasonMessage(reason)}
}

const codePrefix = "AUTH-"

// GenerateAuthorizationCode returns "AUTH-" followed by 8 uppercase hex
// characters drawn from a cryptographically random 128-bit identifier.
// Uniqueness is enforced at the storage layer; callers retry on collision.
func GenerateAuthorizationCode() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return fmt.Sprintf("%s%X", codePrefix, buf[:4])
}
