package authorization

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a request listing. Zero values mean "no constraint".
type ListFilter struct {
	Status     Status
	PatientID  uuid.UUID
	HospitalID uuid.UUID
	HMOID      uuid.UUID
}

type RequestRepository interface {
	// Create persists the request and its requested-service set atomically.
	// Returns ErrCodeCollision when the authorization code is already taken.
	Create(ctx context.Context, req *AuthorizationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*AuthorizationRequest, error)
	// GetByCode returns the request bearing the code regardless of status.
	GetByCode(ctx context.Context, code string) (*AuthorizationRequest, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*AuthorizationRequest, int, error)
	// Transition atomically moves the request from `from` to `to` and stamps
	// reviewed_at. It reports false when the request was no longer in `from`,
	// which is how a losing concurrent reviewer learns it lost.
	Transition(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *AuthorizationReview) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*AuthorizationReview, error)
}

type DeliveryRepository interface {
	// Create persists a delivery. Returns a *ValidationError with reason
	// already_delivered when the (request, service) pair already has one.
	Create(ctx context.Context, delivery *ServiceDelivery) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*ServiceDelivery, error)
}
