package careplan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PatientDirectory is the slice of the patient domain this service needs:
// the admission date that anchors first-month plans.
type PatientDirectory interface {
	AdmissionDate(ctx context.Context, patientID uuid.UUID) (time.Time, error)
}

type Service struct {
	plans    PlanRepository
	problems ProblemRepository
	needs    NursingNeedRepository
	patients PatientDirectory
	now      func() time.Time
}

func NewService(plans PlanRepository, problems ProblemRepository, needs NursingNeedRepository, patients PatientDirectory) *Service {
	return &Service{
		plans:    plans,
		problems: problems,
		needs:    needs,
		patients: patients,
		now:      time.Now,
	}
}

// SetClock overrides the service clock, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// WarnDuplicateFirstMonth is advisory: a second first-month plan is
// allowed but flagged, matching the editor's warning banner.
const WarnDuplicateFirstMonth = "patient already has a first-month plan"

// PlanResult is a persisted plan plus any advisory warnings raised while
// creating it.
type PlanResult struct {
	Plan     *CarePlan `json:"plan"`
	Warnings []string  `json:"warnings,omitempty"`
}

// SchedulePreview is the live recomputation shown while a plan is being
// edited; nothing here is persisted.
type SchedulePreview struct {
	AnchorDate        time.Time `json:"anchor_date"`
	PlanDate          time.Time `json:"plan_date"`
	ReviewDueDate     time.Time `json:"review_due_date"`
	NextVersionNumber int       `json:"next_version_number"`
	Warnings          []string  `json:"warnings,omitempty"`
}

func (s *Service) validatePlan(plan *CarePlan) error {
	if plan.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if !validPlanTypes[plan.PlanType] {
		return fmt.Errorf("invalid plan_type: %s", plan.PlanType)
	}
	if plan.Status == "" {
		plan.Status = "active"
	}
	if plan.Status != "active" && plan.Status != "archived" {
		return fmt.Errorf("invalid status: %s", plan.Status)
	}
	return nil
}

func (s *Service) validateProblems(problems []*CarePlanProblem) error {
	for _, p := range problems {
		if !validCategories[p.Category] {
			return fmt.Errorf("invalid problem category: %s", p.Category)
		}
		if p.Description == "" {
			return fmt.Errorf("problem description is required")
		}
	}
	return nil
}

func (s *Service) firstMonthWarnings(plan *CarePlan, existing []*CarePlan) []string {
	if plan.PlanType != PlanFirstMonth {
		return nil
	}
	for _, p := range existing {
		if p.PlanType == PlanFirstMonth && p.ID != plan.ID {
			return []string{WarnDuplicateFirstMonth}
		}
	}
	return nil
}

// Preview recomputes anchor, due date and version for the editor. It is
// re-invoked by the UI whenever plan type or plan date changes; the
// result is only persisted through CreatePlan.
func (s *Service) Preview(ctx context.Context, patientID uuid.UUID, planType PlanType, planDate *time.Time) (*SchedulePreview, error) {
	if !validPlanTypes[planType] {
		return nil, fmt.Errorf("invalid plan_type: %s", planType)
	}
	admission, err := s.patients.AdmissionDate(ctx, patientID)
	if err != nil {
		return nil, err
	}
	existing, err := s.plans.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	today := s.now()
	anchor := ComputeAnchorDate(planType, admission, LatestPlan(existing), today)
	date := anchor
	if planDate != nil {
		date = *planDate
	}
	preview := &SchedulePreview{
		AnchorDate:        anchor,
		PlanDate:          date,
		ReviewDueDate:     ComputeDueDate(planType, date),
		NextVersionNumber: NextVersionNumber(existing),
		Warnings:          s.firstMonthWarnings(&CarePlan{PatientID: patientID, PlanType: planType}, existing),
	}
	return preview, nil
}

// CreatePlan persists a plan with its problems and nursing needs. The
// version number and review due date are computed from the read set at
// save time and frozen afterwards. When PlanDate is zero, the computed
// anchor is used.
func (s *Service) CreatePlan(ctx context.Context, plan *CarePlan, problems []*CarePlanProblem, settings []*NursingNeedSetting) (*PlanResult, error) {
	if err := s.validatePlan(plan); err != nil {
		return nil, err
	}
	if err := s.validateProblems(problems); err != nil {
		return nil, err
	}
	admission, err := s.patients.AdmissionDate(ctx, plan.PatientID)
	if err != nil {
		return nil, err
	}
	existing, err := s.plans.ListByPatient(ctx, plan.PatientID)
	if err != nil {
		return nil, err
	}
	today := s.now()
	if plan.PlanDate.IsZero() {
		plan.PlanDate = ComputeAnchorDate(plan.PlanType, admission, LatestPlan(existing), today)
	}
	plan.ReviewDueDate = ComputeDueDate(plan.PlanType, plan.PlanDate)
	plan.VersionNumber = NextVersionNumber(existing)
	if err := ValidateChain(plan, existing, admission, today); err != nil {
		return nil, err
	}
	warnings := s.firstMonthWarnings(plan, existing)

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		if err := s.problems.ReplaceForPlan(ctx, plan.ID, problems); err != nil {
			return nil, err
		}
	}
	if err := s.saveSettings(ctx, plan.ID, settings); err != nil {
		return nil, err
	}
	return &PlanResult{Plan: plan, Warnings: warnings}, nil
}

// saveSettings persists nursing-need settings with the overall flag
// overwritten by its derived value.
func (s *Service) saveSettings(ctx context.Context, planID uuid.UUID, settings []*NursingNeedSetting) error {
	if settings == nil {
		return nil
	}
	items, err := s.needs.ListItems(ctx)
	if err != nil {
		return err
	}
	return s.needs.ReplaceSettings(ctx, planID, ApplyOverall(settings, items))
}

// UpdatePlan edits a stored plan. The review due date is recomputed only
// when plan type or plan date changed; otherwise the frozen value stands.
func (s *Service) UpdatePlan(ctx context.Context, plan *CarePlan, problems []*CarePlanProblem, settings []*NursingNeedSetting) (*CarePlan, error) {
	if err := s.validatePlan(plan); err != nil {
		return nil, err
	}
	if err := s.validateProblems(problems); err != nil {
		return nil, err
	}
	stored, err := s.plans.GetByID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.PatientID = stored.PatientID
	plan.VersionNumber = stored.VersionNumber
	plan.ParentPlanID = stored.ParentPlanID
	if plan.PlanType != stored.PlanType || !plan.PlanDate.Equal(stored.PlanDate) {
		plan.ReviewDueDate = ComputeDueDate(plan.PlanType, plan.PlanDate)
	} else {
		plan.ReviewDueDate = stored.ReviewDueDate
	}
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	if problems != nil {
		if err := s.problems.ReplaceForPlan(ctx, plan.ID, problems); err != nil {
			return nil, err
		}
	}
	if err := s.saveSettings(ctx, plan.ID, settings); err != nil {
		return nil, err
	}
	return plan, nil
}

// DuplicatePlan starts the next review cycle from an existing plan: a new
// plan at the next version, nursing needs copied, problems copied with
// their outcome reviews cleared for reassessment, and the source plan
// stamped as reviewed.
func (s *Service) DuplicatePlan(ctx context.Context, sourceID uuid.UUID, newType PlanType, newDate time.Time, createdBy string) (*PlanResult, error) {
	source, err := s.plans.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	srcProblems, err := s.problems.ListByPlan(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	srcSettings, err := s.needs.ListSettings(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	remarks := fmt.Sprintf("created by review of version %d", source.VersionNumber)
	plan := &CarePlan{
		PatientID:    source.PatientID,
		ParentPlanID: &source.ID,
		PlanType:     newType,
		PlanDate:     newDate,
		Status:       "active",
		CreatedBy:    &createdBy,
		Remarks:      &remarks,
	}
	copied := make([]*CarePlanProblem, len(srcProblems))
	for i, p := range srcProblems {
		copied[i] = &CarePlanProblem{
			Category:        p.Category,
			Description:     p.Description,
			ExpectedGoals:   p.ExpectedGoals,
			Interventions:   p.Interventions,
			Outcome:         Unreviewed(),
			ProblemAssessor: p.ProblemAssessor,
			DisplayOrder:    p.DisplayOrder,
		}
	}
	settings := make([]*NursingNeedSetting, len(srcSettings))
	for i, st := range srcSettings {
		settings[i] = &NursingNeedSetting{ItemID: st.ItemID, HasNeed: st.HasNeed, Remarks: st.Remarks}
	}

	result, err := s.CreatePlan(ctx, plan, copied, settings)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.now()
	source.ReviewedAt = &reviewedAt
	source.ReviewedBy = &createdBy
	if err := s.plans.Update(ctx, source); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*CarePlan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) ListPlans(ctx context.Context, limit, offset int) ([]*CarePlan, int, error) {
	return s.plans.List(ctx, limit, offset)
}

func (s *Service) ListPlansByPatient(ctx context.Context, patientID uuid.UUID) ([]*CarePlan, error) {
	return s.plans.ListByPatient(ctx, patientID)
}

func (s *Service) PlanHistory(ctx context.Context, planID uuid.UUID) ([]*CarePlan, error) {
	return s.plans.History(ctx, planID)
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.plans.Delete(ctx, id)
}

// ArchivePlan retires a plan without deleting its history.
func (s *Service) ArchivePlan(ctx context.Context, id uuid.UUID) (*CarePlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	plan.Status = "archived"
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// PlanSchedule reports the plan's standing against its review deadline,
// evaluated against the patient's full plan chain.
func (s *Service) PlanSchedule(ctx context.Context, id uuid.UUID) (ScheduleState, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	chain, err := s.plans.ListByPatient(ctx, plan.PatientID)
	if err != nil {
		return "", err
	}
	return EvaluateSchedule(plan, chain, s.now()), nil
}

func (s *Service) ListProblems(ctx context.Context, planID uuid.UUID) ([]*CarePlanProblem, error) {
	return s.problems.ListByPlan(ctx, planID)
}

// ReviewProblem applies a verdict selection to one problem with toggle
// semantics and stamps the assessor while a review is recorded.
func (s *Service) ReviewProblem(ctx context.Context, problemID uuid.UUID, verdict Verdict, assessor string) (*CarePlanProblem, error) {
	if !validVerdicts[verdict] {
		return nil, fmt.Errorf("invalid verdict: %s", verdict)
	}
	p, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	p.Outcome = p.Outcome.Toggle(verdict)
	if p.Outcome.IsReviewed() {
		p.OutcomeAssessor = &assessor
	} else {
		p.OutcomeAssessor = nil
	}
	if err := s.problems.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// BulkReviewProblems records one verdict across every problem of a plan
// in a single action. Problems already carrying the verdict keep it.
// The writes go through one transactional batch, so a failure leaves no
// problem half-reviewed.
func (s *Service) BulkReviewProblems(ctx context.Context, planID uuid.UUID, verdict Verdict, assessor string) ([]*CarePlanProblem, error) {
	if !validVerdicts[verdict] {
		return nil, fmt.Errorf("invalid verdict: %s", verdict)
	}
	problems, err := s.problems.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	BulkReview(problems, verdict)
	for _, p := range problems {
		p.OutcomeAssessor = &assessor
	}
	if err := s.problems.UpdateOutcomes(ctx, problems); err != nil {
		return nil, err
	}
	return problems, nil
}

// PlanReviewStatus summarizes outcome-review completion for a plan.
func (s *Service) PlanReviewStatus(ctx context.Context, planID uuid.UUID) (ReviewSummary, error) {
	problems, err := s.problems.ListByPlan(ctx, planID)
	if err != nil {
		return ReviewSummary{}, err
	}
	return ReviewStatus(problems), nil
}

func (s *Service) ListNeedItems(ctx context.Context) ([]*NursingNeedItem, error) {
	return s.needs.ListItems(ctx)
}

func (s *Service) CreateNeedItem(ctx context.Context, item *NursingNeedItem) error {
	if item.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.needs.CreateItem(ctx, item)
}

func (s *Service) ListNeedSettings(ctx context.Context, planID uuid.UUID) ([]*NursingNeedSetting, error) {
	return s.needs.ListSettings(ctx, planID)
}
