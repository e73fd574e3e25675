package catalog

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
}

type HospitalRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	List(ctx context.Context, limit, offset int) ([]*Hospital, int, error)
}

type ServiceRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Service, error)
	List(ctx context.Context, limit, offset int) ([]*Service, int, error)
}

type CoverageRepository interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*CoveragePlan, error)
	ListRules(ctx context.Context, coveragePlanID uuid.UUID) ([]*CoverageRule, error)
}

type ContractRepository interface {
	// ActiveContract returns the active contract between the HMO and the
	// hospital with its covered-service set, or nil when none exists.
	ActiveContract(ctx context.Context, hmoID, hospitalID uuid.UUID) (*Contract, error)
}

type StaffRepository interface {
	// ListHMOStaffUserIDs returns the user ids of every active staff member
	// of the given HMO.
	ListHMOStaffUserIDs(ctx context.Context, hmoID uuid.UUID) ([]string, error)
}
