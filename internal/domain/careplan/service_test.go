package careplan

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockPlanRepo struct{ store map[uuid.UUID]*CarePlan }

func newMockPlanRepo() *mockPlanRepo { return &mockPlanRepo{store: make(map[uuid.UUID]*CarePlan)} }
func (m *mockPlanRepo) Create(_ context.Context, p *CarePlan) error {
	p.ID = uuid.New(); m.store[p.ID] = p; return nil
}
func (m *mockPlanRepo) GetByID(_ context.Context, id uuid.UUID) (*CarePlan, error) {
	p, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return p, nil
}
func (m *mockPlanRepo) Update(_ context.Context, p *CarePlan) error {
	if _, ok := m.store[p.ID]; !ok { return fmt.Errorf("not found") }; m.store[p.ID] = p; return nil
}
func (m *mockPlanRepo) Delete(_ context.Context, id uuid.UUID) error { delete(m.store, id); return nil }
func (m *mockPlanRepo) List(_ context.Context, limit, offset int) ([]*CarePlan, int, error) {
	var r []*CarePlan; for _, p := range m.store { r = append(r, p) }; return r, len(r), nil
}
func (m *mockPlanRepo) ListByPatient(_ context.Context, pid uuid.UUID) ([]*CarePlan, error) {
	var r []*CarePlan; for _, p := range m.store { if p.PatientID == pid { r = append(r, p) } }; return r, nil
}
func (m *mockPlanRepo) History(_ context.Context, id uuid.UUID) ([]*CarePlan, error) {
	var r []*CarePlan
	for cur, ok := m.store[id]; ok; {
		r = append(r, cur)
		if cur.ParentPlanID == nil { break }
		cur, ok = m.store[*cur.ParentPlanID]
	}
	return r, nil
}

type mockProblemRepo struct {
	store    map[uuid.UUID]*CarePlanProblem
	batchErr error
}

func newMockProblemRepo() *mockProblemRepo {
	return &mockProblemRepo{store: make(map[uuid.UUID]*CarePlanProblem)}
}
func (m *mockProblemRepo) Create(_ context.Context, p *CarePlanProblem) error {
	p.ID = uuid.New(); m.store[p.ID] = p; return nil
}
func (m *mockProblemRepo) Update(_ context.Context, p *CarePlanProblem) error {
	if _, ok := m.store[p.ID]; !ok { return fmt.Errorf("not found") }; m.store[p.ID] = p; return nil
}
func (m *mockProblemRepo) Delete(_ context.Context, id uuid.UUID) error { delete(m.store, id); return nil }
func (m *mockProblemRepo) GetByID(_ context.Context, id uuid.UUID) (*CarePlanProblem, error) {
	p, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return p, nil
}
func (m *mockProblemRepo) ListByPlan(_ context.Context, planID uuid.UUID) ([]*CarePlanProblem, error) {
	var r []*CarePlanProblem; for _, p := range m.store { if p.PlanID == planID { q := *p; r = append(r, &q) } }; return r, nil
}
func (m *mockProblemRepo) UpdateOutcomes(_ context.Context, problems []*CarePlanProblem) error {
	if m.batchErr != nil { return m.batchErr }
	for _, p := range problems { if _, ok := m.store[p.ID]; !ok { return fmt.Errorf("not found") }; m.store[p.ID] = p }
	return nil
}
func (m *mockProblemRepo) ReplaceForPlan(_ context.Context, planID uuid.UUID, problems []*CarePlanProblem) error {
	for id, p := range m.store { if p.PlanID == planID { delete(m.store, id) } }
	for _, p := range problems { p.ID = uuid.New(); p.PlanID = planID; m.store[p.ID] = p }
	return nil
}

type mockNeedRepo struct {
	items    []*NursingNeedItem
	settings map[uuid.UUID][]*NursingNeedSetting
}

func newMockNeedRepo(items []*NursingNeedItem) *mockNeedRepo {
	return &mockNeedRepo{items: items, settings: make(map[uuid.UUID][]*NursingNeedSetting)}
}
func (m *mockNeedRepo) ListItems(_ context.Context) ([]*NursingNeedItem, error) { return m.items, nil }
func (m *mockNeedRepo) CreateItem(_ context.Context, item *NursingNeedItem) error {
	item.ID = uuid.New(); m.items = append(m.items, item); return nil
}
func (m *mockNeedRepo) ListSettings(_ context.Context, planID uuid.UUID) ([]*NursingNeedSetting, error) {
	return m.settings[planID], nil
}
func (m *mockNeedRepo) ReplaceSettings(_ context.Context, planID uuid.UUID, settings []*NursingNeedSetting) error {
	for _, s := range settings { if s.ID == uuid.Nil { s.ID = uuid.New() }; s.PlanID = planID }
	m.settings[planID] = settings
	return nil
}

type mockPatientDirectory struct{ admissions map[uuid.UUID]time.Time }

func (m *mockPatientDirectory) AdmissionDate(_ context.Context, id uuid.UUID) (time.Time, error) {
	at, ok := m.admissions[id]; if !ok { return time.Time{}, fmt.Errorf("patient not found") }; return at, nil
}

type testEnv struct {
	svc      *Service
	plans    *mockPlanRepo
	problems *mockProblemRepo
	needs    *mockNeedRepo
	patient  uuid.UUID
}

func newTestEnv(admission, today time.Time) *testEnv {
	patient := uuid.New()
	items, _, _, _ := testNeedCatalog()
	plans := newMockPlanRepo()
	problems := newMockProblemRepo()
	needs := newMockNeedRepo(items)
	dir := &mockPatientDirectory{admissions: map[uuid.UUID]time.Time{patient: admission}}
	svc := NewService(plans, problems, needs, dir)
	svc.SetClock(func() time.Time { return today })
	return &testEnv{svc: svc, plans: plans, problems: problems, needs: needs, patient: patient}
}

func TestCreatePlan_ComputesScheduleFields(t *testing.T) {
	admission := d(2024, time.March, 1)
	env := newTestEnv(admission, d(2024, time.March, 20))

	plan := &CarePlan{PatientID: env.patient, PlanType: PlanFirstMonth, PlanDate: d(2024, time.April, 5)}
	result, err := env.svc.CreatePlan(context.Background(), plan, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Plan.VersionNumber != 1 {
		t.Errorf("version = %d, want 1", result.Plan.VersionNumber)
	}
	if want := d(2024, time.October, 5); !result.Plan.ReviewDueDate.Equal(want) {
		t.Errorf("due date = %s, want %s", result.Plan.ReviewDueDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestCreatePlan_DefaultsPlanDateToAnchor(t *testing.T) {
	admission := d(2024, time.March, 1)
	env := newTestEnv(admission, d(2024, time.March, 20))

	plan := &CarePlan{PatientID: env.patient, PlanType: PlanFirstMonth}
	result, err := env.svc.CreatePlan(context.Background(), plan, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := d(2024, time.March, 31); !result.Plan.PlanDate.Equal(want) {
		t.Errorf("plan date = %s, want anchor %s", result.Plan.PlanDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestCreatePlan_RejectsDateBeforeAnchor(t *testing.T) {
	admission := d(2024, time.March, 1)
	env := newTestEnv(admission, d(2024, time.March, 20))

	plan := &CarePlan{PatientID: env.patient, PlanType: PlanFirstMonth, PlanDate: d(2024, time.March, 10)}
	_, err := env.svc.CreatePlan(context.Background(), plan, nil, nil)
	if !errors.Is(err, ErrInvalidPlanChain) {
		t.Fatalf("expected ErrInvalidPlanChain, got %v", err)
	}
}

func TestCreatePlan_SecondFirstMonthWarns(t *testing.T) {
	admission := d(2024, time.March, 1)
	env := newTestEnv(admission, d(2024, time.March, 20))

	first := &CarePlan{PatientID: env.patient, PlanType: PlanFirstMonth}
	if _, err := env.svc.CreatePlan(context.Background(), first, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := &CarePlan{PatientID: env.patient, PlanType: PlanFirstMonth, PlanDate: d(2024, time.May, 1)}
	result, err := env.svc.CreatePlan(context.Background(), second, nil, nil)
	if err != nil {
		t.Fatalf("duplicate first-month plan must be allowed: %v", err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != WarnDuplicateFirstMonth {
		t.Errorf("expected advisory warning, got %v", result.Warnings)
	}
	if result.Plan.VersionNumber != 2 {
		t.Errorf("version = %d, want 2", result.Plan.VersionNumber)
	}
}

func TestCreatePlan_InvalidInput(t *testing.T) {
	env := newTestEnv(d(2024, time.March, 1), d(2024, time.March, 20))
	ctx := context.Background()

	if _, err := env.svc.CreatePlan(ctx, &CarePlan{PlanType: PlanAnnual}, nil, nil); err == nil {
		t.Error("expected error for missing patient")
	}
	if _, err := env.svc.CreatePlan(ctx, &CarePlan{PatientID: env.patient, PlanType: "bogus"}, nil, nil); err == nil {
		t.Error("expected error for invalid plan type")
	}
	bad := []*CarePlanProblem{{Category: "bogus", Description: "x"}}
	if _, err := env.svc.CreatePlan(ctx, &CarePlan{PatientID: env.patient, PlanType: PlanAnnual}, bad, nil); err == nil {
		t.Error("expected error for invalid problem category")
	}
}

func TestCreatePlan_DerivesOverallNeed(t *testing.T) {
	env := newTestEnv(d(2024, time.March, 1), d(2024, time.March, 20))
	items, _ := env.needs.ListItems(context.Background())
	mobility := items[0].ID
	overall := items[2].ID

	plan := &CarePlan{PatientID: env.patient, PlanType: PlanAnnual}
	settings := []*NursingNeedSetting{{ItemID: mobility, HasNeed: true}}
	result, err := env.svc.CreatePlan(context.Background(), plan, nil, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := env.needs.ListSettings(context.Background(), result.Plan.ID)
	var found bool
	for _, s := range stored {
		if s.ItemID == overall {
			found = true
			if !s.HasNeed {
				t.Error("overall need must be derived true")
			}
		}
	}
	if !found {
		t.Error("overall setting must be persisted")
	}
}

func TestUpdatePlan_RecomputesDueDateOnlyOnChange(t *testing.T) {
	env := newTestEnv(d(2024, time.March, 1), d(2024, time.March, 20))
	ctx := context.Background()

	plan := &CarePlan{PatientID: env.patient, PlanType: PlanFirstMonth, PlanDate: d(2024, time.April, 5)}
	result, err := env.svc.CreatePlan(ctx, plan, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frozen := result.Plan.ReviewDueDate

	// Editing remarks alone keeps the stored due date.
	remarks := "updated"
	edit := *result.Plan
	edit.Remarks = &remarks
	updated, err := env.svc.UpdatePlan(ctx, &edit, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.ReviewDueDate.Equal(frozen) {
		t.Errorf("due date must stay frozen, got %s", updated.ReviewDueDate.Format("2006-01-02"))
	}

	// Moving the plan date recomputes it.
	edit2 := *updated
	edit2.PlanDate = d(2024, time.April, 10)
	updated2, err := env.svc.UpdatePlan(ctx, &edit2, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := d(2024, time.October, 10); !updated2.ReviewDueDate.Equal(want) {
		t.Errorf("due date = %s, want %s", updated2.ReviewDueDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestDuplicatePlan(t *testing.T) {
	env := newTestEnv(d(2024, time.March, 1), d(2024, time.October, 10))
	ctx := context.Background()

	source := &CarePlan{PatientID: env.patient, PlanType: PlanFirstMonth, PlanDate: d(2024, time.March, 31)}
	problems := []*CarePlanProblem{{
		Category: CategoryNursing, Description: "pressure injury risk",
		ExpectedGoals: []string{"intact skin"}, Outcome: ReviewedAs(VerdictSatisfied),
	}}
	created, err := env.svc.CreatePlan(ctx, source, problems, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := env.svc.DuplicatePlan(ctx, created.Plan.ID, PlanSemiAnnual, d(2024, time.October, 10), "nurse-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next := result.Plan
	if next.VersionNumber != 2 {
		t.Errorf("version = %d, want 2", next.VersionNumber)
	}
	if next.ParentPlanID == nil || *next.ParentPlanID != created.Plan.ID {
		t.Error("duplicate must link to its source plan")
	}

	copied, _ := env.problems.ListByPlan(ctx, next.ID)
	if len(copied) != 1 {
		t.Fatalf("expected 1 copied problem, got %d", len(copied))
	}
	if copied[0].Outcome.IsReviewed() {
		t.Error("copied problem must start unreviewed")
	}
	if copied[0].Description != "pressure injury risk" {
		t.Errorf("description not carried over: %q", copied[0].Description)
	}

	stamped, _ := env.plans.GetByID(ctx, created.Plan.ID)
	if stamped.ReviewedAt == nil || stamped.ReviewedBy == nil || *stamped.ReviewedBy != "nurse-1" {
		t.Error("source plan must be stamped as reviewed")
	}

	history, _ := env.svc.PlanHistory(ctx, next.ID)
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2", len(history))
	}
}

func TestReviewProblem_ToggleClearsAssessor(t *testing.T) {
	env := newTestEnv(d(2024, time.March, 1), d(2024, time.March, 20))
	ctx := context.Background()

	created, err := env.svc.CreatePlan(ctx, &CarePlan{PatientID: env.patient, PlanType: PlanAnnual},
		[]*CarePlanProblem{{Category: CategoryPhysiotherapy, Description: "reduced mobility"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, _ := env.problems.ListByPlan(ctx, created.Plan.ID)
	id := list[0].ID

	p, err := env.svc.ReviewProblem(ctx, id, VerdictMaintained, "nurse-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := p.Outcome.Verdict(); v != VerdictMaintained {
		t.Errorf("got %v", v)
	}
	if p.OutcomeAssessor == nil || *p.OutcomeAssessor != "nurse-1" {
		t.Error("assessor must be stamped with the review")
	}

	p, err = env.svc.ReviewProblem(ctx, id, VerdictMaintained, "nurse-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Outcome.IsReviewed() {
		t.Error("same verdict again must clear the review")
	}
	if p.OutcomeAssessor != nil {
		t.Error("clearing the review must clear the assessor")
	}

	if _, err := env.svc.ReviewProblem(ctx, id, "bogus", "nurse-1"); err == nil {
		t.Error("expected error for invalid verdict")
	}
}

func TestBulkReviewProblems(t *testing.T) {
	env := newTestEnv(d(2024, time.March, 1), d(2024, time.March, 20))
	ctx := context.Background()

	created, err := env.svc.CreatePlan(ctx, &CarePlan{PatientID: env.patient, PlanType: PlanAnnual},
		[]*CarePlanProblem{
			{Category: CategoryNursing, Description: "a"},
			{Category: CategoryDietitian, Description: "b"},
		}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	problems, err := env.svc.BulkReviewProblems(ctx, created.Plan.ID, VerdictMaintained, "nurse-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range problems {
		if v, ok := p.Outcome.Verdict(); !ok || v != VerdictMaintained {
			t.Errorf("problem %s not reviewed", p.ID)
		}
	}

	summary, err := env.svc.PlanReviewStatus(ctx, created.Plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Reviewed != 2 || summary.Pending != 0 {
		t.Errorf("got %+v", summary)
	}
}

func TestBulkReviewProblems_FailedWriteLeavesNothingReviewed(t *testing.T) {
	env := newTestEnv(d(2024, time.March, 1), d(2024, time.March, 20))
	ctx := context.Background()

	created, err := env.svc.CreatePlan(ctx, &CarePlan{PatientID: env.patient, PlanType: PlanAnnual},
		[]*CarePlanProblem{
			{Category: CategoryNursing, Description: "a"},
			{Category: CategoryDietitian, Description: "b"},
		}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.problems.batchErr = fmt.Errorf("connection reset")
	if _, err := env.svc.BulkReviewProblems(ctx, created.Plan.ID, VerdictSatisfied, "nurse-2"); err == nil {
		t.Fatal("expected error from failed batch write")
	}

	summary, err := env.svc.PlanReviewStatus(ctx, created.Plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Reviewed != 0 || summary.Pending != 2 {
		t.Errorf("failed batch must leave no problem reviewed: %+v", summary)
	}
}

func TestPlanReviewStatus_NoProblems(t *testing.T) {
	env := newTestEnv(d(2024, time.March, 1), d(2024, time.March, 20))
	created, err := env.svc.CreatePlan(context.Background(), &CarePlan{PatientID: env.patient, PlanType: PlanAnnual}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err := env.svc.PlanReviewStatus(context.Background(), created.Plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.NoProblems {
		t.Error("plan without problems must report NoProblems")
	}
}

func TestPreview(t *testing.T) {
	admission := d(2024, time.March, 1)
	env := newTestEnv(admission, d(2024, time.March, 20))

	preview, err := env.svc.Preview(context.Background(), env.patient, PlanFirstMonth, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := d(2024, time.March, 31); !preview.AnchorDate.Equal(want) {
		t.Errorf("anchor = %s, want %s", preview.AnchorDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
	if preview.NextVersionNumber != 1 {
		t.Errorf("next version = %d, want 1", preview.NextVersionNumber)
	}
	if want := d(2024, time.September, 30); !preview.ReviewDueDate.Equal(want) {
		t.Errorf("due = %s, want %s", preview.ReviewDueDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	// An explicit plan date shifts the due date, not the anchor.
	date := d(2024, time.April, 5)
	preview, err = env.svc.Preview(context.Background(), env.patient, PlanFirstMonth, &date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := d(2024, time.October, 5); !preview.ReviewDueDate.Equal(want) {
		t.Errorf("due = %s, want %s", preview.ReviewDueDate.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestArchivePlan(t *testing.T) {
	env := newTestEnv(d(2024, time.March, 1), d(2024, time.March, 20))
	created, err := env.svc.CreatePlan(context.Background(), &CarePlan{PatientID: env.patient, PlanType: PlanAnnual}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plan, err := env.svc.ArchivePlan(context.Background(), created.Plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Status != "archived" {
		t.Errorf("status = %q, want archived", plan.Status)
	}
}

func TestPlanSchedule(t *testing.T) {
	env := newTestEnv(d(2024, time.March, 1), d(2024, time.March, 20))
	created, err := env.svc.CreatePlan(context.Background(), &CarePlan{PatientID: env.patient, PlanType: PlanAnnual}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state, err := env.svc.PlanSchedule(context.Background(), created.Plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StateOnTrack {
		t.Errorf("state = %s, want %s", state, StateOnTrack)
	}
}
