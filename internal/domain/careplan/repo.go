package careplan

import (
	"context"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *CarePlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*CarePlan, error)
	Update(ctx context.Context, plan *CarePlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*CarePlan, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*CarePlan, error)
	// History walks the parent chain from the given plan back to the
	// chain root, newest first.
	History(ctx context.Context, planID uuid.UUID) ([]*CarePlan, error)
}

type ProblemRepository interface {
	Create(ctx context.Context, p *CarePlanProblem) error
	Update(ctx context.Context, p *CarePlanProblem) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*CarePlanProblem, error)
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]*CarePlanProblem, error)
	ReplaceForPlan(ctx context.Context, planID uuid.UUID, problems []*CarePlanProblem) error
	// UpdateOutcomes persists the outcome review of every problem in one
	// transaction; either all reviews land or none do.
	UpdateOutcomes(ctx context.Context, problems []*CarePlanProblem) error
}

type NursingNeedRepository interface {
	ListItems(ctx context.Context) ([]*NursingNeedItem, error)
	CreateItem(ctx context.Context, item *NursingNeedItem) error
	ListSettings(ctx context.Context, planID uuid.UUID) ([]*NursingNeedSetting, error)
	ReplaceSettings(ctx context.Context, planID uuid.UUID, settings []*NursingNeedSetting) error
}
