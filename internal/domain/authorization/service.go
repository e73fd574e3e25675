package authorization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nexahealth/priorauth/internal/domain/catalog"
)

// maxCodeAttempts bounds the generate-insert retry loop when a freshly
// generated authorization code collides with an existing one.
const maxCodeAttempts = 5

// CatalogReader is the slice of the catalog facade the lifecycle manager
// depends on.
type CatalogReader interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*catalog.Patient, error)
	GetServices(ctx context.Context, ids []uuid.UUID) ([]*catalog.Service, error)
	CoverageRules(ctx context.Context, coveragePlanID uuid.UUID) ([]*catalog.CoverageRule, error)
	ActiveContract(ctx context.Context, hmoID, hospitalID uuid.UUID) (*catalog.Contract, error)
}

// EventEmitter receives lifecycle events and writes the audit entries and
// notifications they imply. It is called inside the same transaction as the
// state change it describes.
type EventEmitter interface {
	RequestCreated(ctx context.Context, req *AuthorizationRequest) error
	RequestReviewed(ctx context.Context, req *AuthorizationRequest, review *AuthorizationReview) error
	ServiceDelivered(ctx context.Context, req *AuthorizationRequest, delivery *ServiceDelivery) error
}

// TxFunc runs fn inside a storage transaction. Production wires
// db.RunInTx over the pool; tests pass a passthrough.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// CreateInput is the caller-supplied portion of a new request.
type CreateInput struct {
	PatientID   uuid.UUID
	HospitalID  uuid.UUID
	ServiceIDs  []uuid.UUID
	Diagnosis   string
	Notes       *string
	RequestedBy string
}

// ReviewInput is a human reviewer's decision on a pending request.
type ReviewInput struct {
	RequestID  uuid.UUID
	Decision   Status
	Notes      *string
	ReviewerID string
}

// Service implements the authorization lifecycle: creation with automatic
// adjudication, human review, code validation, and delivery recording.
type Service struct {
	requests     RequestRepository
	reviews      ReviewRepository
	deliveries   DeliveryRepository
	catalog      CatalogReader
	events       EventEmitter
	runInTx      TxFunc
	codeValidity time.Duration
	now          func() time.Time
}

func NewService(requests RequestRepository, reviews ReviewRepository,
	deliveries DeliveryRepository, cat CatalogReader, events EventEmitter,
	runInTx TxFunc, codeValidity time.Duration) *Service {
	return &Service{
		requests:     requests,
		reviews:      reviews,
		deliveries:   deliveries,
		catalog:      cat,
		events:       events,
		runInTx:      runInTx,
		codeValidity: codeValidity,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create files an authorization request, runs the decision engine over a
// snapshot of the patient's coverage, and either auto-approves it or leaves
// it pending for human review. The request row, its service set, the
// system review (when auto-approved), the audit entry, and the
// notifications are committed atomically.
func (s *Service) Create(ctx context.Context, in CreateInput) (*AuthorizationRequest, error) {
	if in.PatientID == uuid.Nil || in.HospitalID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id and hospital_id are required", ErrInvalidInput)
	}
	if len(in.ServiceIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}
	if in.Diagnosis == "" {
		return nil, fmt.Errorf("%w: diagnosis is required", ErrInvalidInput)
	}

	patient, err := s.catalog.GetPatient(ctx, in.PatientID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("patient %s: %w", in.PatientID, ErrNotFound)
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	services, err := s.catalog.GetServices(ctx, in.ServiceIDs)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown service in request", ErrInvalidInput)
		}
		return nil, fmt.Errorf("resolve services: %w", err)
	}

	contract, err := s.catalog.ActiveContract(ctx, patient.HMOID, in.HospitalID)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}
	rules, err := s.catalog.CoverageRules(ctx, patient.CoveragePlanID)
	if err != nil {
		return nil, fmt.Errorf("load coverage rules: %w", err)
	}

	decision := Evaluate(EvaluationInput{Services: services, Contract: contract, Rules: rules})

	req := &AuthorizationRequest{
		PatientID:      in.PatientID,
		HospitalID:     in.HospitalID,
		HMOID:          patient.HMOID,
		CoveragePlanID: patient.CoveragePlanID,
		RequestedBy:    in.RequestedBy,
		Diagnosis:      in.Diagnosis,
		Notes:          in.Notes,
	}
	seen := make(map[uuid.UUID]bool, len(in.ServiceIDs))
	for _, id := range in.ServiceIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		req.Services = append(req.Services, &RequestedService{ServiceID: id})
	}

	// Insert-time code collisions abort the transaction, so each retry
	// starts a fresh one with a fresh code.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		req.AuthorizationCode = GenerateAuthorizationCode()
		req.Services = resetServiceSet(req.Services)

		err = s.runInTx(ctx, func(ctx context.Context) error {
			if err := s.requests.Create(ctx, req); err != nil {
				return err
			}
			var review *AuthorizationReview
			if decision.AutoApprove {
				var err error
				review, err = s.transition(ctx, req, StatusApproved, SystemReviewer(), autoApprovalNotes())
				if err != nil {
					return err
				}
				req.LastReview = review
			}
			// Emitted after adjudication so the created event carries the
			// request's real initial status.
			if err := s.events.RequestCreated(ctx, req); err != nil {
				return fmt.Errorf("emit created: %w", err)
			}
			if review != nil {
				if err := s.events.RequestReviewed(ctx, req, review); err != nil {
					return fmt.Errorf("emit reviewed: %w", err)
				}
			}
			return nil
		})
		if errors.Is(err, ErrCodeCollision) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return req, nil
	}
	return nil, fmt.Errorf("create request: %w", ErrCodeCollision)
}

// Review applies a human decision to a pending request. A request that has
// already left PENDING, including by a concurrent reviewer, yields
// ErrConflict; the losing decision leaves no trace.
func (s *Service) Review(ctx context.Context, in ReviewInput) (*AuthorizationRequest, error) {
	if in.Decision != StatusApproved && in.Decision != StatusRejected {
		return nil, fmt.Errorf("%w: decision must be APPROVED or REJECTED", ErrInvalidInput)
	}
	if in.ReviewerID == "" {
		return nil, fmt.Errorf("%w: reviewer is required", ErrInvalidInput)
	}

	req, err := s.requests.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Status.Terminal() {
		return nil, fmt.Errorf("request %s is %s: %w", req.ID, req.Status, ErrConflict)
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		review, err := s.transition(ctx, req, in.Decision, HumanReviewer(in.ReviewerID), in.Notes)
		if err != nil {
			return err
		}
		req.LastReview = review
		if err := s.events.RequestReviewed(ctx, req, review); err != nil {
			return fmt.Errorf("emit reviewed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// transition moves the request out of PENDING and appends the review row.
// Callers run it inside a transaction and emit the reviewed event
// themselves.
func (s *Service) transition(ctx context.Context, req *AuthorizationRequest, to Status, reviewer Reviewer, notes *string) (*AuthorizationReview, error) {
	ok, err := s.requests.Transition(ctx, req.ID, StatusPending, to)
	if err != nil {
		return nil, fmt.Errorf("transition request: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("request %s already reviewed: %w", req.ID, ErrConflict)
	}
	req.Status = to
	now := s.now()
	req.ReviewedAt = &now

	review := &AuthorizationReview{
		RequestID: req.ID,
		Reviewer:  reviewer,
		Status:    to,
		Notes:     notes,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("append review: %w", err)
	}
	return review, nil
}

// Validate checks an authorization code against a service. Checks run in a
// fixed order and the first failure wins: code resolves to an approved
// request, service belongs to the request, code within its validity
// window, service not yet delivered. Invalid outcomes are results, not
// errors; the error return is for storage faults only.
func (s *Service) Validate(ctx context.Context, code string, serviceID uuid.UUID) (*ValidationResult, error) {
	req, err := s.lookupApproved(ctx, code)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return invalidResult(ReasonInvalidCode), nil
	}
	if !req.IncludesService(serviceID) {
		return invalidResult(ReasonServiceNotIncluded), nil
	}
	if s.expired(req) {
		return invalidResult(ReasonCodeExpired), nil
	}
	delivered, err := s.alreadyDelivered(ctx, req.ID, serviceID)
	if err != nil {
		return nil, err
	}
	if delivered {
		return invalidResult(ReasonAlreadyDelivered), nil
	}
	return &ValidationResult{Valid: true, Request: req}, nil
}

// RecordDelivery validates the code for the service and, when valid,
// records the delivery. The uniqueness index backs up the pre-check, so a
// concurrent duplicate still comes back as already_delivered.
func (s *Service) RecordDelivery(ctx context.Context, code string, serviceID uuid.UUID, deliveredBy string) (*ServiceDelivery, error) {
	if deliveredBy == "" {
		return nil, fmt.Errorf("%w: delivering staff is required", ErrInvalidInput)
	}

	result, err := s.Validate(ctx, code, serviceID)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Reason: result.Reason}
	}
	req := result.Request

	delivery := &ServiceDelivery{
		RequestID:   req.ID,
		ServiceID:   serviceID,
		DeliveredBy: deliveredBy,
	}
	err = s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.deliveries.Create(ctx, delivery); err != nil {
			return err
		}
		if err := s.events.ServiceDelivered(ctx, req, delivery); err != nil {
			return fmt.Errorf("emit delivered: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return delivery, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*AuthorizationRequest, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*AuthorizationRequest, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	return s.requests.List(ctx, filter, limit, offset)
}

func (s *Service) ListReviews(ctx context.Context, requestID uuid.UUID) ([]*AuthorizationReview, error) {
	if _, err := s.requests.GetByID(ctx, requestID); err != nil {
		return nil, err
	}
	return s.reviews.ListByRequest(ctx, requestID)
}

// lookupApproved resolves a code to its request and returns nil when the
// code is unknown or the request is not in an approved state.
func (s *Service) lookupApproved(ctx context.Context, code string) (*AuthorizationRequest, error) {
	req, err := s.requests.GetByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if req.Status != StatusApproved && req.Status != StatusAutoApproved {
		return nil, nil
	}
	return req, nil
}

// expired reports whether the code's validity window has elapsed. The
// window is anchored at creation; a code presented at exactly
// created_at + window is still valid.
func (s *Service) expired(req *AuthorizationRequest) bool {
	return s.now().After(req.CreatedAt.Add(s.codeValidity))
}

func (s *Service) alreadyDelivered(ctx context.Context, requestID, serviceID uuid.UUID) (bool, error) {
	deliveries, err := s.deliveries.ListByRequest(ctx, requestID)
	if err != nil {
		return false, fmt.Errorf("load deliveries: %w", err)
	}
	for _, d := range deliveries {
		if d.ServiceID == serviceID {
			return true, nil
		}
	}
	return false, nil
}

// resetServiceSet strips ids assigned by a failed insert attempt so the
// repository reassigns them on retry.
func resetServiceSet(set []*RequestedService) []*RequestedService {
	for _, rs := range set {
		rs.ID = uuid.Nil
		rs.RequestID = uuid.Nil
	}
	return set
}

func autoApprovalNotes() *string {
	n := "Automatically approved: all requested services within coverage thresholds"
	return &n
}
