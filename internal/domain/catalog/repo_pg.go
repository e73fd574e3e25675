package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

// ErrNotFound is returned when a catalog entity does not exist.
var ErrNotFound = errors.New("catalog entity not found")

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, user_id, first_name, last_name, hmo_id, coverage_plan_id, created_at
		FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.HMOID, &p.CoveragePlanID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// =========== Hospital Repository ===========

type hospitalRepoPG struct{ pool *pgxpool.Pool }

func NewHospitalRepoPG(pool *pgxpool.Pool) HospitalRepository { return &hospitalRepoPG{pool: pool} }

const hospitalCols = `id, name, address, city, state, created_at`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Address, &h.City, &h.State, &h.CreatedAt)
	return &h, err
}

func (r *hospitalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	h, err := scanHospital(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM hospitals WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *hospitalRepoPG) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM hospitals`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+hospitalCols+` FROM hospitals ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, rows.Err()
}

// =========== Service Repository ===========

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository { return &serviceRepoPG{pool: pool} }

const serviceCols = `id, name, description, cost, created_at`

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Cost, &s.CreatedAt)
	return &s, err
}

func (r *serviceRepoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+serviceCols+` FROM services WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *serviceRepoPG) List(ctx context.Context, limit, offset int) ([]*Service, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM services`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx,
		`SELECT `+serviceCols+` FROM services ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// =========== Coverage Repository ===========

type coverageRepoPG struct{ pool *pgxpool.Pool }

func NewCoverageRepoPG(pool *pgxpool.Pool) CoverageRepository { return &coverageRepoPG{pool: pool} }

func (r *coverageRepoPG) GetPlan(ctx context.Context, id uuid.UUID) (*CoveragePlan, error) {
	var p CoveragePlan
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, hmo_id, name, description, created_at
		FROM coverage_plans WHERE id = $1`, id).
		Scan(&p.ID, &p.HMOID, &p.Name, &p.Description, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *coverageRepoPG) ListRules(ctx context.Context, coveragePlanID uuid.UUID) ([]*CoverageRule, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, coverage_plan_id, service_id, auto_approval_threshold, requires_pre_auth
		FROM coverage_rules WHERE coverage_plan_id = $1`, coveragePlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CoverageRule
	for rows.Next() {
		var cr CoverageRule
		if err := rows.Scan(&cr.ID, &cr.CoveragePlanID, &cr.ServiceID,
			&cr.AutoApprovalThreshold, &cr.RequiresPreAuth); err != nil {
			return nil, err
		}
		items = append(items, &cr)
	}
	return items, rows.Err()
}

// =========== Contract Repository ===========

type contractRepoPG struct{ pool *pgxpool.Pool }

func NewContractRepoPG(pool *pgxpool.Pool) ContractRepository { return &contractRepoPG{pool: pool} }

func (r *contractRepoPG) ActiveContract(ctx context.Context, hmoID, hospitalID uuid.UUID) (*Contract, error) {
	q := conn(ctx, r.pool)
	var c Contract
	err := q.QueryRow(ctx, `
		SELECT id, hmo_id, hospital_id, is_active
		FROM hmo_hospital_contracts
		WHERE hmo_id = $1 AND hospital_id = $2 AND is_active`, hmoID, hospitalID).
		Scan(&c.ID, &c.HMOID, &c.HospitalID, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx,
		`SELECT service_id FROM contract_services WHERE contract_id = $1`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sid uuid.UUID
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		c.ServiceIDs = append(c.ServiceIDs, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

// =========== Staff Repository ===========

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewStaffRepoPG(pool *pgxpool.Pool) StaffRepository { return &staffRepoPG{pool: pool} }

func (r *staffRepoPG) ListHMOStaffUserIDs(ctx context.Context, hmoID uuid.UUID) ([]string, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT user_id FROM hmo_staff WHERE hmo_id = $1 AND is_active ORDER BY user_id`, hmoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
