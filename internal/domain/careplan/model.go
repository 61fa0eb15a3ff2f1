package careplan

import (
	"time"

	"github.com/google/uuid"
)

// PlanType identifies where a plan sits in the review cycle.
type PlanType string

const (
	PlanFirstMonth PlanType = "first_month"
	PlanSemiAnnual PlanType = "semi_annual"
	PlanAnnual     PlanType = "annual"
)

var validPlanTypes = map[PlanType]bool{
	PlanFirstMonth: true, PlanSemiAnnual: true, PlanAnnual: true,
}

// CarePlan maps to the care_plan table. ReviewDueDate is derived from
// PlanType and PlanDate at save time and stored; it is never recomputed
// on read. VersionNumber is assigned once at creation and never
// renumbered afterwards.
type CarePlan struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	ParentPlanID       *uuid.UUID `db:"parent_plan_id" json:"parent_plan_id,omitempty"`
	VersionNumber      int        `db:"version_number" json:"version_number"`
	PlanType           PlanType   `db:"plan_type" json:"plan_type"`
	PlanDate           time.Time  `db:"plan_date" json:"plan_date"`
	ReviewDueDate      time.Time  `db:"review_due_date" json:"review_due_date"`
	Status             string     `db:"status" json:"status"`
	ReviewedAt         *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy         *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	CreatedBy          *string    `db:"created_by" json:"created_by,omitempty"`
	Remarks            *string    `db:"remarks" json:"remarks,omitempty"`
	CaseConferenceDate *time.Time `db:"case_conference_date" json:"case_conference_date,omitempty"`
	FamilyContactDate  *time.Time `db:"family_contact_date" json:"family_contact_date,omitempty"`
	FamilyMemberName   *string    `db:"family_member_name" json:"family_member_name,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// ProblemCategory is the discipline a care-plan problem belongs to.
type ProblemCategory string

const (
	CategoryNursing             ProblemCategory = "nursing"
	CategoryPhysiotherapy       ProblemCategory = "physiotherapy"
	CategoryOccupationalTherapy ProblemCategory = "occupational_therapy"
	CategorySpeechTherapy       ProblemCategory = "speech_therapy"
	CategoryDietitian           ProblemCategory = "dietitian"
	CategoryPhysician           ProblemCategory = "physician"
)

var validCategories = map[ProblemCategory]bool{
	CategoryNursing: true, CategoryPhysiotherapy: true,
	CategoryOccupationalTherapy: true, CategorySpeechTherapy: true,
	CategoryDietitian: true, CategoryPhysician: true,
}

// CarePlanProblem maps to the care_plan_problem table.
type CarePlanProblem struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	PlanID          uuid.UUID       `db:"care_plan_id" json:"care_plan_id"`
	Category        ProblemCategory `db:"category" json:"category"`
	Description     string          `db:"description" json:"description"`
	ExpectedGoals   []string        `db:"expected_goals" json:"expected_goals"`
	Interventions   []string        `db:"interventions" json:"interventions"`
	Outcome         OutcomeReview   `db:"-" json:"outcome"`
	ProblemAssessor *string         `db:"problem_assessor" json:"problem_assessor,omitempty"`
	OutcomeAssessor *string         `db:"outcome_assessor" json:"outcome_assessor,omitempty"`
	DisplayOrder    int             `db:"display_order" json:"display_order"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// NursingNeedItem is a catalog entry. The item named "overall" is
// distinguished: its per-plan setting is always derived, never user-set.
type NursingNeedItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	IsDefault    bool      `db:"is_default" json:"is_default"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
}

// OverallItemName names the derived catalog entry.
const OverallItemName = "overall"

// IsOverall reports whether this is the derived aggregate item.
func (i *NursingNeedItem) IsOverall() bool { return i.Name == OverallItemName }

// NursingNeedSetting maps to the care_plan_nursing_need table.
type NursingNeedSetting struct {
	ID      uuid.UUID `db:"id" json:"id"`
	PlanID  uuid.UUID `db:"care_plan_id" json:"care_plan_id"`
	ItemID  uuid.UUID `db:"item_id" json:"item_id"`
	HasNeed bool      `db:"has_need" json:"has_need"`
	Remarks *string   `db:"remarks" json:"remarks,omitempty"`
}
