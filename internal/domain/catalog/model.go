package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the directory record the lifecycle manager snapshots at
// request-creation time. UserID links to the external identity service.
type Patient struct {
	ID             uuid.UUID `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	HMOID          uuid.UUID `db:"hmo_id" json:"hmo_id"`
	CoveragePlanID uuid.UUID `db:"coverage_plan_id" json:"coverage_plan_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type Hospital struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	City      *string   `db:"city" json:"city,omitempty"`
	State     *string   `db:"state" json:"state,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Service is a billable catalog entry. Cost is non-negative.
type Service struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Cost        float64   `db:"cost" json:"cost"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CoveragePlan struct {
	ID          uuid.UUID `db:"id" json:"id"`
	HMOID       uuid.UUID `db:"hmo_id" json:"hmo_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CoverageRule is the per-plan, per-service policy consumed by the decision
// engine: the auto-approval cost ceiling and the pre-authorization flag.
type CoverageRule struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	CoveragePlanID        uuid.UUID `db:"coverage_plan_id" json:"coverage_plan_id"`
	ServiceID             uuid.UUID `db:"service_id" json:"service_id"`
	AutoApprovalThreshold float64   `db:"auto_approval_threshold" json:"auto_approval_threshold"`
	RequiresPreAuth       bool      `db:"requires_pre_auth" json:"requires_pre_auth"`
}

// Contract states that a hospital may bill an HMO for an enumerated set of
// services. ServiceIDs holds the covered set; only active contracts are
// returned by the reader.
type Contract struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	HMOID      uuid.UUID   `db:"hmo_id" json:"hmo_id"`
	HospitalID uuid.UUID   `db:"hospital_id" json:"hospital_id"`
	IsActive   bool        `db:"is_active" json:"is_active"`
	ServiceIDs []uuid.UUID `json:"service_ids"`
}

// Covers reports whether the contract's covered set contains the service.
func (c *Contract) Covers(serviceID uuid.UUID) bool {
	for _, id := range c.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
