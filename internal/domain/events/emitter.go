package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nexahealth/priorauth/internal/domain/authorization"
	"github.com/nexahealth/priorauth/internal/domain/catalog"
)

// Directory resolves notification recipients. The catalog reader
// satisfies it.
type Directory interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*catalog.Patient, error)
	ListHMOStaffUserIDs(ctx context.Context, hmoID uuid.UUID) ([]string, error)
}

// ReviewerSelectorFunc picks which HMO users are asked to review a pending
// request. The default selects every active staff member of the HMO.
type ReviewerSelectorFunc func(ctx context.Context, hmoID uuid.UUID) ([]string, error)

// Emitter turns lifecycle events into audit entries and notifications. It
// runs inside the caller's transaction, so its writes commit or roll back
// with the state change they describe.
type Emitter struct {
	audit           AuditRepository
	notifications   NotificationRepository
	directory       Directory
	selectReviewers ReviewerSelectorFunc
}

func NewEmitter(audit AuditRepository, notifications NotificationRepository, directory Directory) *Emitter {
	e := &Emitter{audit: audit, notifications: notifications, directory: directory}
	e.selectReviewers = func(ctx context.Context, hmoID uuid.UUID) ([]string, error) {
		return directory.ListHMOStaffUserIDs(ctx, hmoID)
	}
	return e
}

// SetReviewerSelector overrides the pending-review fan-out policy.
func (e *Emitter) SetReviewerSelector(fn ReviewerSelectorFunc) { e.selectReviewers = fn }

func (e *Emitter) RequestCreated(ctx context.Context, req *authorization.AuthorizationRequest) error {
	entry := &AuditEntry{
		Actor:      req.RequestedBy,
		Action:     ActionRequestCreated,
		EntityType: EntityAuthorizationRequest,
		EntityID:   req.ID,
		Details: map[string]interface{}{
			"authorization_code": req.AuthorizationCode,
			"status":             req.Status,
			"patient_id":         req.PatientID,
			"hospital_id":        req.HospitalID,
		},
	}
	if err := e.audit.Create(ctx, entry); err != nil {
		return fmt.Errorf("audit created: %w", err)
	}

	// Only requests left pending need announcing; auto-approved ones never
	// reach the review queue, and their patient hears through the reviewed
	// event instead.
	if req.Status != authorization.StatusPending {
		return nil
	}

	patient, err := e.directory.GetPatient(ctx, req.PatientID)
	if err != nil {
		return fmt.Errorf("resolve patient: %w", err)
	}
	batch := []*Notification{{
		UserID:            patient.UserID,
		Type:              NotifyAuthorizationRequest,
		Title:             "New authorization request",
		Message:           fmt.Sprintf("Your authorization request %s was submitted and is awaiting review", req.AuthorizationCode),
		RelatedEntityType: EntityAuthorizationRequest,
		RelatedEntityID:   req.ID,
	}}

	reviewers, err := e.selectReviewers(ctx, req.HMOID)
	if err != nil {
		return fmt.Errorf("select reviewers: %w", err)
	}
	if len(reviewers) == 0 {
		log.Ctx(ctx).Warn().
			Str("request_id", req.ID.String()).
			Str("hmo_id", req.HMOID.String()).
			Msg("no active reviewers for HMO, request will wait unannounced")
	}
	for _, userID := range reviewers {
		batch = append(batch, &Notification{
			UserID:            userID,
			Type:              NotifyAuthorizationRequest,
			Title:             "Authorization request awaiting review",
			Message:           fmt.Sprintf("Request %s requires review", req.AuthorizationCode),
			RelatedEntityType: EntityAuthorizationRequest,
			RelatedEntityID:   req.ID,
		})
	}
	if err := e.notifications.CreateBatch(ctx, batch); err != nil {
		return fmt.Errorf("notify request: %w", err)
	}
	return nil
}

func (e *Emitter) RequestReviewed(ctx context.Context, req *authorization.AuthorizationRequest, review *authorization.AuthorizationReview) error {
	entry := &AuditEntry{
		Actor:      review.Reviewer.AuditActor(),
		Action:     reviewAction(review),
		EntityType: EntityAuthorizationRequest,
		EntityID:   req.ID,
		Details: map[string]interface{}{
			"authorization_code": req.AuthorizationCode,
			"status":             review.Status,
		},
	}
	if review.Notes != nil {
		entry.Details["notes"] = *review.Notes
	}
	if err := e.audit.Create(ctx, entry); err != nil {
		return fmt.Errorf("audit reviewed: %w", err)
	}

	patient, err := e.directory.GetPatient(ctx, req.PatientID)
	if err != nil {
		return fmt.Errorf("resolve patient: %w", err)
	}
	n := &Notification{
		UserID:            patient.UserID,
		Type:              NotifyAuthorizationResult,
		RelatedEntityType: EntityAuthorizationRequest,
		RelatedEntityID:   req.ID,
	}
	if review.Status == authorization.StatusApproved || review.Status == authorization.StatusAutoApproved {
		n.Title = "Authorization approved"
		n.Message = fmt.Sprintf("Your authorization %s was approved", req.AuthorizationCode)
	} else {
		n.Title = "Authorization rejected"
		n.Message = "Your authorization request was rejected"
	}
	if err := e.notifications.CreateBatch(ctx, []*Notification{n}); err != nil {
		return fmt.Errorf("notify patient: %w", err)
	}
	return nil
}

func (e *Emitter) ServiceDelivered(ctx context.Context, req *authorization.AuthorizationRequest, delivery *authorization.ServiceDelivery) error {
	entry := &AuditEntry{
		Actor:      delivery.DeliveredBy,
		Action:     ActionDelivered,
		EntityType: EntityAuthorizationRequest,
		EntityID:   req.ID,
		Details: map[string]interface{}{
			"authorization_code": req.AuthorizationCode,
			"service_id":         delivery.ServiceID,
		},
	}
	if err := e.audit.Create(ctx, entry); err != nil {
		return fmt.Errorf("audit delivered: %w", err)
	}

	patient, err := e.directory.GetPatient(ctx, req.PatientID)
	if err != nil {
		return fmt.Errorf("resolve patient: %w", err)
	}
	n := &Notification{
		UserID:            patient.UserID,
		Type:              NotifyServiceDelivered,
		Title:             "Service delivered",
		Message:           fmt.Sprintf("A service under authorization %s was recorded as delivered", req.AuthorizationCode),
		RelatedEntityType: EntityAuthorizationRequest,
		RelatedEntityID:   req.ID,
	}
	if err := e.notifications.CreateBatch(ctx, []*Notification{n}); err != nil {
		return fmt.Errorf("notify patient: %w", err)
	}
	return nil
}

func reviewAction(review *authorization.AuthorizationReview) string {
	if review.Reviewer.Kind == authorization.ReviewerKindSystem {
		return ActionAutoApproved
	}
	if review.Status == authorization.StatusRejected {
		return ActionRejected
	}
	return ActionApproved
}
