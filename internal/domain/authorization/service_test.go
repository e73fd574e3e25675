package authorization

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nexahealth/priorauth/internal/domain/catalog"
)

// =========== mocks ===========

type mockRequestRepo struct {
	byID       map[uuid.UUID]*AuthorizationRequest
	collisions int
	loseRace   bool
	created    []*AuthorizationRequest
	lastFilter ListFilter
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{byID: map[uuid.UUID]*AuthorizationRequest{}}
}

func (m *mockRequestRepo) Create(_ context.Context, req *AuthorizationRequest) error {
	if m.collisions > 0 {
		m.collisions--
		return ErrCodeCollision
	}
	req.ID = uuid.New()
	req.Status = StatusPending
	req.CreatedAt = time.Now().UTC()
	for _, rs := range req.Services {
		rs.ID = uuid.New()
		rs.RequestID = req.ID
	}
	m.byID[req.ID] = req
	m.created = append(m.created, req)
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*AuthorizationRequest, error) {
	req, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return req, nil
}

func (m *mockRequestRepo) GetByCode(_ context.Context, code string) (*AuthorizationRequest, error) {
	for _, req := range m.byID {
		if req.AuthorizationCode == code {
			return req, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRequestRepo) List(_ context.Context, filter ListFilter, _, _ int) ([]*AuthorizationRequest, int, error) {
	m.lastFilter = filter
	var out []*AuthorizationRequest
	for _, req := range m.byID {
		out = append(out, req)
	}
	return out, len(out), nil
}

func (m *mockRequestRepo) Transition(_ context.Context, id uuid.UUID, from, to Status) (bool, error) {
	if m.loseRace {
		return false, nil
	}
	req, ok := m.byID[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	return true, nil
}

type mockReviewRepo struct {
	reviews []*AuthorizationReview
}

func (m *mockReviewRepo) Create(_ context.Context, r *AuthorizationReview) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now().UTC()
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *mockReviewRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]*AuthorizationReview, error) {
	var out []*AuthorizationReview
	for _, r := range m.reviews {
		if r.RequestID == requestID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockDeliveryRepo struct {
	deliveries []*ServiceDelivery
}

func (m *mockDeliveryRepo) Create(_ context.Context, d *ServiceDelivery) error {
	for _, have := range m.deliveries {
		if have.RequestID == d.RequestID && have.ServiceID == d.ServiceID {
			return &ValidationError{Reason: ReasonAlreadyDelivered}
		}
	}
	d.ID = uuid.New()
	d.DeliveredAt = time.Now().UTC()
	m.deliveries = append(m.deliveries, d)
	return nil
}

func (m *mockDeliveryRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]*ServiceDelivery, error) {
	var out []*ServiceDelivery
	for _, d := range m.deliveries {
		if d.RequestID == requestID {
			out = append(out, d)
		}
	}
	return out, nil
}

type mockCatalog struct {
	patient  *catalog.Patient
	services map[uuid.UUID]*catalog.Service
	contract *catalog.Contract
	rules    []*catalog.CoverageRule
}

func (m *mockCatalog) GetPatient(_ context.Context, id uuid.UUID) (*catalog.Patient, error) {
	if m.patient == nil || m.patient.ID != id {
		return nil, catalog.ErrNotFound
	}
	return m.patient, nil
}

func (m *mockCatalog) GetServices(_ context.Context, ids []uuid.UUID) ([]*catalog.Service, error) {
	var out []*catalog.Service
	for _, id := range ids {
		s, ok := m.services[id]
		if !ok {
			return nil, catalog.ErrNotFound
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockCatalog) CoverageRules(_ context.Context, _ uuid.UUID) ([]*catalog.CoverageRule, error) {
	return m.rules, nil
}

func (m *mockCatalog) ActiveContract(_ context.Context, _, _ uuid.UUID) (*catalog.Contract, error) {
	return m.contract, nil
}

type mockEmitter struct {
	created   int
	reviewed  int
	delivered int
}

func (m *mockEmitter) RequestCreated(_ context.Context, _ *AuthorizationRequest) error {
	m.created++
	return nil
}

func (m *mockEmitter) RequestReviewed(_ context.Context, _ *AuthorizationRequest, _ *AuthorizationReview) error {
	m.reviewed++
	return nil
}

func (m *mockEmitter) ServiceDelivered(_ context.Context, _ *AuthorizationRequest, _ *ServiceDelivery) error {
	m.delivered++
	return nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// =========== fixture ===========

type fixture struct {
	svc        *Service
	requests   *mockRequestRepo
	reviews    *mockReviewRepo
	deliveries *mockDeliveryRepo
	emitter    *mockEmitter
	catalog    *mockCatalog
	patient    *catalog.Patient
	hospitalID uuid.UUID
	mri        *catalog.Service
	surgery    *catalog.Service
}

func newFixture() *fixture {
	mri := &catalog.Service{ID: uuid.New(), Name: "MRI", Cost: 3000}
	surgery := &catalog.Service{ID: uuid.New(), Name: "Surgery", Cost: 9000}
	patient := &catalog.Patient{
		ID:             uuid.New(),
		UserID:         "patient-user",
		HMOID:          uuid.New(),
		CoveragePlanID: uuid.New(),
	}
	cat := &mockCatalog{
		patient: patient,
		services: map[uuid.UUID]*catalog.Service{
			mri.ID:     mri,
			surgery.ID: surgery,
		},
		contract: &catalog.Contract{
			ID: uuid.New(), IsActive: true,
			ServiceIDs: []uuid.UUID{mri.ID, surgery.ID},
		},
		rules: []*catalog.CoverageRule{
			{ID: uuid.New(), ServiceID: mri.ID, AutoApprovalThreshold: 5000},
			{ID: uuid.New(), ServiceID: surgery.ID, AutoApprovalThreshold: 5000},
		},
	}

	f := &fixture{
		requests:   newMockRequestRepo(),
		reviews:    &mockReviewRepo{},
		deliveries: &mockDeliveryRepo{},
		emitter:    &mockEmitter{},
		catalog:    cat,
		patient:    patient,
		hospitalID: uuid.New(),
		mri:        mri,
		surgery:    surgery,
	}
	f.svc = NewService(f.requests, f.reviews, f.deliveries, f.catalog, f.emitter,
		passthroughTx, 720*time.Hour)
	return f
}

func (f *fixture) createInput(serviceIDs ...uuid.UUID) CreateInput {
	return CreateInput{
		PatientID:   f.patient.ID,
		HospitalID:  f.hospitalID,
		ServiceIDs:  serviceIDs,
		Diagnosis:   "Chronic back pain",
		RequestedBy: "doctor-user",
	}
}

// =========== Create ===========

func TestCreate_AutoApproved(t *testing.T) {
	f := newFixture()

	req, err := f.svc.Create(context.Background(), f.createInput(f.mri.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != StatusApproved {
		t.Errorf("status = %s, want %s", req.Status, StatusApproved)
	}
	if req.AuthorizationCode == "" {
		t.Error("expected an authorization code")
	}
	if req.ReviewedAt == nil {
		t.Error("expected reviewed_at to be stamped")
	}
	if len(f.reviews.reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(f.reviews.reviews))
	}
	review := f.reviews.reviews[0]
	if review.Reviewer.Kind != ReviewerKindSystem {
		t.Errorf("reviewer kind = %s, want system", review.Reviewer.Kind)
	}
	if review.Status != StatusApproved {
		t.Errorf("review status = %s, want %s", review.Status, StatusApproved)
	}
	if f.emitter.created != 1 || f.emitter.reviewed != 1 {
		t.Errorf("events: created=%d reviewed=%d, want 1/1", f.emitter.created, f.emitter.reviewed)
	}
}

func TestCreate_PendingWhenAboveThreshold(t *testing.T) {
	f := newFixture()

	req, err := f.svc.Create(context.Background(), f.createInput(f.surgery.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != StatusPending {
		t.Errorf("status = %s, want %s", req.Status, StatusPending)
	}
	if req.ReviewedAt != nil {
		t.Error("pending request must not have reviewed_at")
	}
	if len(f.reviews.reviews) != 0 {
		t.Errorf("expected no review rows, got %d", len(f.reviews.reviews))
	}
	if f.emitter.created != 1 || f.emitter.reviewed != 0 {
		t.Errorf("events: created=%d reviewed=%d, want 1/0", f.emitter.created, f.emitter.reviewed)
	}
}

func TestCreate_MixedServicesStayPending(t *testing.T) {
	f := newFixture()

	req, err := f.svc.Create(context.Background(), f.createInput(f.mri.ID, f.surgery.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != StatusPending {
		t.Errorf("one over-threshold service must hold the whole request, got %s", req.Status)
	}
}

func TestCreate_SnapshotsPatientCoverage(t *testing.T) {
	f := newFixture()

	req, err := f.svc.Create(context.Background(), f.createInput(f.mri.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.HMOID != f.patient.HMOID {
		t.Error("request must snapshot the patient's HMO")
	}
	if req.CoveragePlanID != f.patient.CoveragePlanID {
		t.Error("request must snapshot the patient's coverage plan")
	}
}

func TestCreate_EmptyServiceSet(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), f.createInput())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreate_MissingDiagnosis(t *testing.T) {
	f := newFixture()
	in := f.createInput(f.mri.ID)
	in.Diagnosis = ""

	_, err := f.svc.Create(context.Background(), in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreate_UnknownPatient(t *testing.T) {
	f := newFixture()
	in := f.createInput(f.mri.ID)
	in.PatientID = uuid.New()

	_, err := f.svc.Create(context.Background(), in)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_UnknownService(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), f.createInput(uuid.New()))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreate_RetriesOnCodeCollision(t *testing.T) {
	f := newFixture()
	f.requests.collisions = 2

	req, err := f.svc.Create(context.Background(), f.createInput(f.mri.ID))
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if req.AuthorizationCode == "" {
		t.Error("expected a code after retries")
	}
}

func TestCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture()
	f.requests.collisions = maxCodeAttempts + 1

	_, err := f.svc.Create(context.Background(), f.createInput(f.mri.ID))
	if !errors.Is(err, ErrCodeCollision) {
		t.Fatalf("expected ErrCodeCollision after exhausting retries, got %v", err)
	}
}

// =========== Review ===========

func pendingRequest(t *testing.T, f *fixture, serviceIDs ...uuid.UUID) *AuthorizationRequest {
	t.Helper()
	if len(serviceIDs) == 0 {
		serviceIDs = []uuid.UUID{f.surgery.ID}
	}
	req, err := f.svc.Create(context.Background(), f.createInput(serviceIDs...))
	if err != nil {
		t.Fatalf("create pending request: %v", err)
	}
	if req.Status != StatusPending {
		t.Fatalf("fixture request expected to stay pending, got %s", req.Status)
	}
	return req
}

func TestReview_Approve(t *testing.T) {
	f := newFixture()
	req := pendingRequest(t, f)

	reviewed, err := f.svc.Review(context.Background(), ReviewInput{
		RequestID:  req.ID,
		Decision:   StatusApproved,
		ReviewerID: "hmo-staff-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reviewed.Status != StatusApproved {
		t.Errorf("status = %s, want %s", reviewed.Status, StatusApproved)
	}
	if len(f.reviews.reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(f.reviews.reviews))
	}
	r := f.reviews.reviews[0]
	if r.Reviewer.Kind != ReviewerKindHuman || r.Reviewer.UserID != "hmo-staff-1" {
		t.Errorf("unexpected reviewer %+v", r.Reviewer)
	}
	if f.emitter.reviewed != 1 {
		t.Errorf("expected 1 reviewed event, got %d", f.emitter.reviewed)
	}
}

func TestReview_Reject(t *testing.T) {
	f := newFixture()
	req := pendingRequest(t, f)
	notes := "Not medically indicated"

	reviewed, err := f.svc.Review(context.Background(), ReviewInput{
		RequestID:  req.ID,
		Decision:   StatusRejected,
		Notes:      &notes,
		ReviewerID: "hmo-staff-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reviewed.Status != StatusRejected {
		t.Errorf("status = %s, want %s", reviewed.Status, StatusRejected)
	}
}

func TestReview_InvalidDecision(t *testing.T) {
	f := newFixture()
	req := pendingRequest(t, f)

	_, err := f.svc.Review(context.Background(), ReviewInput{
		RequestID:  req.ID,
		Decision:   StatusCancelled,
		ReviewerID: "hmo-staff-1",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReview_AlreadyReviewed(t *testing.T) {
	f := newFixture()
	req := pendingRequest(t, f)

	if _, err := f.svc.Review(context.Background(), ReviewInput{
		RequestID: req.ID, Decision: StatusApproved, ReviewerID: "hmo-staff-1",
	}); err != nil {
		t.Fatalf("first review: %v", err)
	}

	_, err := f.svc.Review(context.Background(), ReviewInput{
		RequestID: req.ID, Decision: StatusRejected, ReviewerID: "hmo-staff-2",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on second review, got %v", err)
	}
	if len(f.reviews.reviews) != 1 {
		t.Errorf("losing review must leave no trace, got %d rows", len(f.reviews.reviews))
	}
}

func TestReview_ConcurrentLoserGetsConflict(t *testing.T) {
	f := newFixture()
	req := pendingRequest(t, f)

	// Simulates another reviewer winning between this reviewer's read and
	// the compare-and-swap update.
	f.requests.loseRace = true

	_, err := f.svc.Review(context.Background(), ReviewInput{
		RequestID: req.ID, Decision: StatusRejected, ReviewerID: "loser",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for the loser, got %v", err)
	}
	if len(f.reviews.reviews) != 0 {
		t.Errorf("losing review must leave no trace, got %d rows", len(f.reviews.reviews))
	}
}

func TestReview_UnknownRequest(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Review(context.Background(), ReviewInput{
		RequestID: uuid.New(), Decision: StatusApproved, ReviewerID: "hmo-staff-1",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// =========== Validate ===========

func approvedRequest(t *testing.T, f *fixture) *AuthorizationRequest {
	t.Helper()
	req, err := f.svc.Create(context.Background(), f.createInput(f.mri.ID))
	if err != nil {
		t.Fatalf("create approved request: %v", err)
	}
	if req.Status != StatusApproved {
		t.Fatalf("fixture request expected auto-approval, got %s", req.Status)
	}
	return req
}

func TestValidate_OK(t *testing.T) {
	f := newFixture()
	req := approvedRequest(t, f)

	result, err := f.svc.Validate(context.Background(), req.AuthorizationCode, f.mri.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, got reason %q", result.Reason)
	}
	if result.Request == nil || result.Request.ID != req.ID {
		t.Error("valid result must carry the request")
	}
}

func TestValidate_UnknownCode(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Validate(context.Background(), "AUTH-DEADBEEF", f.mri.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || result.Reason != ReasonInvalidCode {
		t.Fatalf("expected invalid_code, got valid=%v reason=%q", result.Valid, result.Reason)
	}
	if result.Request != nil {
		t.Error("invalid result must not leak the request")
	}
}

func TestValidate_PendingCode(t *testing.T) {
	f := newFixture()
	req := pendingRequest(t, f)

	result, err := f.svc.Validate(context.Background(), req.AuthorizationCode, f.surgery.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || result.Reason != ReasonInvalidCode {
		t.Fatalf("a pending code must not validate, got valid=%v reason=%q", result.Valid, result.Reason)
	}
}

func TestValidate_RejectedCode(t *testing.T) {
	f := newFixture()
	req := pendingRequest(t, f)
	if _, err := f.svc.Review(context.Background(), ReviewInput{
		RequestID: req.ID, Decision: StatusRejected, ReviewerID: "hmo-staff-1",
	}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	result, err := f.svc.Validate(context.Background(), req.AuthorizationCode, f.surgery.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || result.Reason != ReasonInvalidCode {
		t.Fatalf("a rejected code must not validate, got reason %q", result.Reason)
	}
}

func TestValidate_ServiceNotIncluded(t *testing.T) {
	f := newFixture()
	req := approvedRequest(t, f)

	result, err := f.svc.Validate(context.Background(), req.AuthorizationCode, f.surgery.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != ReasonServiceNotIncluded {
		t.Fatalf("expected service_not_included, got %q", result.Reason)
	}
}

func TestValidate_ExpiredCode(t *testing.T) {
	f := newFixture()
	req := approvedRequest(t, f)

	f.svc.now = func() time.Time {
		return req.CreatedAt.Add(720*time.Hour + time.Second)
	}
	result, err := f.svc.Validate(context.Background(), req.AuthorizationCode, f.mri.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != ReasonCodeExpired {
		t.Fatalf("expected code_expired, got %q", result.Reason)
	}
}

func TestValidate_ExactWindowBoundaryStillValid(t *testing.T) {
	f := newFixture()
	req := approvedRequest(t, f)

	f.svc.now = func() time.Time {
		return req.CreatedAt.Add(720 * time.Hour)
	}
	result, err := f.svc.Validate(context.Background(), req.AuthorizationCode, f.mri.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("code at exactly the window boundary must be valid, got %q", result.Reason)
	}
}

func TestValidate_ChecksServiceBeforeExpiry(t *testing.T) {
	f := newFixture()
	req := approvedRequest(t, f)

	f.svc.now = func() time.Time {
		return req.CreatedAt.Add(1000 * time.Hour)
	}
	result, err := f.svc.Validate(context.Background(), req.AuthorizationCode, f.surgery.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != ReasonServiceNotIncluded {
		t.Fatalf("service membership is checked before expiry, got %q", result.Reason)
	}
}

func TestValidate_AlreadyDelivered(t *testing.T) {
	f := newFixture()
	req := approvedRequest(t, f)

	if _, err := f.svc.RecordDelivery(context.Background(), req.AuthorizationCode, f.mri.ID, "nurse-1"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	result, err := f.svc.Validate(context.Background(), req.AuthorizationCode, f.mri.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != ReasonAlreadyDelivered {
		t.Fatalf("expected already_delivered, got %q", result.Reason)
	}
}

// =========== RecordDelivery ===========

func TestRecordDelivery_OK(t *testing.T) {
	f := newFixture()
	req := approvedRequest(t, f)

	delivery, err := f.svc.RecordDelivery(context.Background(), req.AuthorizationCode, f.mri.ID, "nurse-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivery.RequestID != req.ID || delivery.ServiceID != f.mri.ID {
		t.Error("delivery must reference the request and service")
	}
	if delivery.DeliveredBy != "nurse-1" {
		t.Errorf("delivered_by = %q, want nurse-1", delivery.DeliveredBy)
	}
	if f.emitter.delivered != 1 {
		t.Errorf("expected 1 delivered event, got %d", f.emitter.delivered)
	}
}

func TestRecordDelivery_InvalidCode(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RecordDelivery(context.Background(), "AUTH-00000000", f.mri.ID, "nurse-1")
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Reason != ReasonInvalidCode {
		t.Errorf("reason = %q, want invalid_code", ve.Reason)
	}
}

func TestRecordDelivery_Duplicate(t *testing.T) {
	f := newFixture()
	req := approvedRequest(t, f)

	if _, err := f.svc.RecordDelivery(context.Background(), req.AuthorizationCode, f.mri.ID, "nurse-1"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	_, err := f.svc.RecordDelivery(context.Background(), req.AuthorizationCode, f.mri.ID, "nurse-2")
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Reason != ReasonAlreadyDelivered {
		t.Errorf("reason = %q, want already_delivered", ve.Reason)
	}
	if len(f.deliveries.deliveries) != 1 {
		t.Errorf("expected a single delivery row, got %d", len(f.deliveries.deliveries))
	}
}

func TestRecordDelivery_MissingStaff(t *testing.T) {
	f := newFixture()
	req := approvedRequest(t, f)

	_, err := f.svc.RecordDelivery(context.Background(), req.AuthorizationCode, f.mri.ID, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// =========== List / ListReviews ===========

func TestList_RejectsUnknownStatus(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.List(context.Background(), ListFilter{Status: "NOT_A_STATUS"}, 10, 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListReviews_UnknownRequest(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ListReviews(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
