package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Reader is the read-only catalog facade consumed by the authorization core.
// The directory/catalog service owns these entities; nothing here mutates.
type Reader struct {
	patients  PatientRepository
	hospitals HospitalRepository
	services  ServiceRepository
	coverage  CoverageRepository
	contracts ContractRepository
	staff     StaffRepository
}

func NewReader(p PatientRepository, h HospitalRepository, s ServiceRepository,
	cov CoverageRepository, con ContractRepository, st StaffRepository) *Reader {
	return &Reader{patients: p, hospitals: h, services: s, coverage: cov, contracts: con, staff: st}
}

func (r *Reader) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.patients.GetByID(ctx, id)
}

func (r *Reader) GetHospital(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return r.hospitals.GetByID(ctx, id)
}

func (r *Reader) ListHospitals(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	return r.hospitals.List(ctx, limit, offset)
}

// GetServices resolves the given ids and fails if any id is unknown, so
// callers never operate on a partial set.
func (r *Reader) GetServices(ctx context.Context, ids []uuid.UUID) ([]*Service, error) {
	services, err := r.services.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(services) != len(dedupe(ids)) {
		return nil, fmt.Errorf("resolve services: %w", ErrNotFound)
	}
	return services, nil
}

func (r *Reader) ListServices(ctx context.Context, limit, offset int) ([]*Service, int, error) {
	return r.services.List(ctx, limit, offset)
}

func (r *Reader) GetCoveragePlan(ctx context.Context, id uuid.UUID) (*CoveragePlan, error) {
	return r.coverage.GetPlan(ctx, id)
}

func (r *Reader) CoverageRules(ctx context.Context, coveragePlanID uuid.UUID) ([]*CoverageRule, error) {
	return r.coverage.ListRules(ctx, coveragePlanID)
}

// ActiveContract returns nil when no active contract exists; absence is a
// business outcome for the decision engine, not an error.
func (r *Reader) ActiveContract(ctx context.Context, hmoID, hospitalID uuid.UUID) (*Contract, error) {
	return r.contracts.ActiveContract(ctx, hmoID, hospitalID)
}

func (r *Reader) ListHMOStaffUserIDs(ctx context.Context, hmoID uuid.UUID) ([]string, error) {
	return r.staff.ListHMOStaffUserIDs(ctx, hmoID)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	var out []uuid.UUID
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
