package careplan

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Plan Repository ===========

type planRepoPG struct{ pool *pgxpool.Pool }

func NewPlanRepoPG(pool *pgxpool.Pool) PlanRepository {
	return &planRepoPG{pool: pool}
}

const planCols = `id, patient_id, parent_plan_id, version_number, plan_type, plan_date,
	review_due_date, status, reviewed_at, reviewed_by, created_by, remarks,
	case_conference_date, family_contact_date, family_member_name, created_at, updated_at`

func (r *planRepoPG) scanPlan(row pgx.Row) (*CarePlan, error) {
	var p CarePlan
	err := row.Scan(&p.ID, &p.PatientID, &p.ParentPlanID, &p.VersionNumber, &p.PlanType,
		&p.PlanDate, &p.ReviewDueDate, &p.Status, &p.ReviewedAt, &p.ReviewedBy,
		&p.CreatedBy, &p.Remarks, &p.CaseConferenceDate, &p.FamilyContactDate,
		&p.FamilyMemberName, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *planRepoPG) Create(ctx context.Context, plan *CarePlan) error {
	plan.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO care_plan (id, patient_id, parent_plan_id, version_number, plan_type,
			plan_date, review_due_date, status, created_by, remarks,
			case_conference_date, family_contact_date, family_member_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		plan.ID, plan.PatientID, plan.ParentPlanID, plan.VersionNumber, plan.PlanType,
		plan.PlanDate, plan.ReviewDueDate, plan.Status, plan.CreatedBy, plan.Remarks,
		plan.CaseConferenceDate, plan.FamilyContactDate, plan.FamilyMemberName)
	return err
}

func (r *planRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CarePlan, error) {
	return r.scanPlan(r.pool.QueryRow(ctx, `SELECT `+planCols+` FROM care_plan WHERE id = $1`, id))
}

func (r *planRepoPG) Update(ctx context.Context, plan *CarePlan) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE care_plan SET plan_type=$2, plan_date=$3, review_due_date=$4, status=$5,
			reviewed_at=$6, reviewed_by=$7, remarks=$8, case_conference_date=$9,
			family_contact_date=$10, family_member_name=$11, updated_at=NOW()
		WHERE id = $1`,
		plan.ID, plan.PlanType, plan.PlanDate, plan.ReviewDueDate, plan.Status,
		plan.ReviewedAt, plan.ReviewedBy, plan.Remarks, plan.CaseConferenceDate,
		plan.FamilyContactDate, plan.FamilyMemberName)
	return err
}

func (r *planRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM care_plan WHERE id = $1`, id)
	return err
}

func (r *planRepoPG) List(ctx context.Context, limit, offset int) ([]*CarePlan, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM care_plan`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+planCols+` FROM care_plan ORDER BY plan_date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*CarePlan
	for rows.Next() {
		p, err := r.scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *planRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*CarePlan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+planCols+` FROM care_plan WHERE patient_id = $1 ORDER BY plan_date ASC, version_number ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CarePlan
	for rows.Next() {
		p, err := r.scanPlan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func (r *planRepoPG) History(ctx context.Context, planID uuid.UUID) ([]*CarePlan, error) {
	rows, err := r.pool.Query(ctx, `
		WITH RECURSIVE chain AS (
			SELECT `+planCols+` FROM care_plan WHERE id = $1
			UNION ALL
			SELECT `+prefixedPlanCols("p")+` FROM care_plan p
			JOIN chain c ON p.id = c.parent_plan_id
		)
		SELECT `+planCols+` FROM chain ORDER BY version_number DESC`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CarePlan
	for rows.Next() {
		p, err := r.scanPlan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func prefixedPlanCols(alias string) string {
	return alias + `.id, ` + alias + `.patient_id, ` + alias + `.parent_plan_id, ` +
		alias + `.version_number, ` + alias + `.plan_type, ` + alias + `.plan_date, ` +
		alias + `.review_due_date, ` + alias + `.status, ` + alias + `.reviewed_at, ` +
		alias + `.reviewed_by, ` + alias + `.created_by, ` + alias + `.remarks, ` +
		alias + `.case_conference_date, ` + alias + `.family_contact_date, ` +
		alias + `.family_member_name, ` + alias + `.created_at, ` + alias + `.updated_at`
}

// =========== Problem Repository ===========

type problemRepoPG struct{ pool *pgxpool.Pool }

func NewProblemRepoPG(pool *pgxpool.Pool) ProblemRepository {
	return &problemRepoPG{pool: pool}
}

const problemCols = `id, care_plan_id, category, description, expected_goals, interventions,
	outcome_verdict, problem_assessor, outcome_assessor, display_order, created_at, updated_at`

func (r *problemRepoPG) scanProblem(row pgx.Row) (*CarePlanProblem, error) {
	var p CarePlanProblem
	var verdict *string
	err := row.Scan(&p.ID, &p.PlanID, &p.Category, &p.Description, &p.ExpectedGoals,
		&p.Interventions, &verdict, &p.ProblemAssessor, &p.OutcomeAssessor,
		&p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if verdict != nil {
		p.Outcome = ReviewedAs(Verdict(*verdict))
	}
	return &p, nil
}

func verdictColumn(o OutcomeReview) *string {
	if v, ok := o.Verdict(); ok {
		s := string(v)
		return &s
	}
	return nil
}

func (r *problemRepoPG) Create(ctx context.Context, p *CarePlanProblem) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO care_plan_problem (id, care_plan_id, category, description,
			expected_goals, interventions, outcome_verdict, problem_assessor,
			outcome_assessor, display_order)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.PlanID, p.Category, p.Description, p.ExpectedGoals, p.Interventions,
		verdictColumn(p.Outcome), p.ProblemAssessor, p.OutcomeAssessor, p.DisplayOrder)
	return err
}

func (r *problemRepoPG) Update(ctx context.Context, p *CarePlanProblem) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE care_plan_problem SET category=$2, description=$3, expected_goals=$4,
			interventions=$5, outcome_verdict=$6, problem_assessor=$7,
			outcome_assessor=$8, display_order=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Category, p.Description, p.ExpectedGoals, p.Interventions,
		verdictColumn(p.Outcome), p.ProblemAssessor, p.OutcomeAssessor, p.DisplayOrder)
	return err
}

func (r *problemRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM care_plan_problem WHERE id = $1`, id)
	return err
}

func (r *problemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CarePlanProblem, error) {
	return r.scanProblem(r.pool.QueryRow(ctx, `SELECT `+problemCols+` FROM care_plan_problem WHERE id = $1`, id))
}

func (r *problemRepoPG) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*CarePlanProblem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+problemCols+` FROM care_plan_problem WHERE care_plan_id = $1 ORDER BY display_order ASC`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CarePlanProblem
	for rows.Next() {
		p, err := r.scanProblem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func (r *problemRepoPG) ReplaceForPlan(ctx context.Context, planID uuid.UUID, problems []*CarePlanProblem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `DELETE FROM care_plan_problem WHERE care_plan_id = $1`, planID); err != nil {
		return err
	}
	for i, p := range problems {
		p.ID = uuid.New()
		p.PlanID = planID
		p.DisplayOrder = i
		if _, err := tx.Exec(ctx, `
			INSERT INTO care_plan_problem (id, care_plan_id, category, description,
				expected_goals, interventions, outcome_verdict, problem_assessor,
				outcome_assessor, display_order)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			p.ID, p.PlanID, p.Category, p.Description, p.ExpectedGoals, p.Interventions,
			verdictColumn(p.Outcome), p.ProblemAssessor, p.OutcomeAssessor, p.DisplayOrder); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *problemRepoPG) UpdateOutcomes(ctx context.Context, problems []*CarePlanProblem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	for _, p := range problems {
		if _, err := tx.Exec(ctx, `
			UPDATE care_plan_problem SET outcome_verdict=$2, outcome_assessor=$3, updated_at=NOW()
			WHERE id = $1`,
			p.ID, verdictColumn(p.Outcome), p.OutcomeAssessor); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// =========== Nursing Need Repository ===========

type nursingNeedRepoPG struct{ pool *pgxpool.Pool }

func NewNursingNeedRepoPG(pool *pgxpool.Pool) NursingNeedRepository {
	return &nursingNeedRepoPG{pool: pool}
}

func (r *nursingNeedRepoPG) ListItems(ctx context.Context) ([]*NursingNeedItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, is_default, display_order FROM nursing_need_item ORDER BY display_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*NursingNeedItem
	for rows.Next() {
		var it NursingNeedItem
		if err := rows.Scan(&it.ID, &it.Name, &it.IsDefault, &it.DisplayOrder); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, nil
}

func (r *nursingNeedRepoPG) CreateItem(ctx context.Context, item *NursingNeedItem) error {
	item.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO nursing_need_item (id, name, is_default, display_order)
		VALUES ($1,$2,$3,$4)`,
		item.ID, item.Name, item.IsDefault, item.DisplayOrder)
	return err
}

func (r *nursingNeedRepoPG) ListSettings(ctx context.Context, planID uuid.UUID) ([]*NursingNeedSetting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, care_plan_id, item_id, has_need, remarks
		FROM care_plan_nursing_need WHERE care_plan_id = $1`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var settings []*NursingNeedSetting
	for rows.Next() {
		var s NursingNeedSetting
		if err := rows.Scan(&s.ID, &s.PlanID, &s.ItemID, &s.HasNeed, &s.Remarks); err != nil {
			return nil, err
		}
		settings = append(settings, &s)
	}
	return settings, nil
}

func (r *nursingNeedRepoPG) ReplaceSettings(ctx context.Context, planID uuid.UUID, settings []*NursingNeedSetting) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `DELETE FROM care_plan_nursing_need WHERE care_plan_id = $1`, planID); err != nil {
		return err
	}
	for _, s := range settings {
		s.ID = uuid.New()
		s.PlanID = planID
		if _, err := tx.Exec(ctx, `
			INSERT INTO care_plan_nursing_need (id, care_plan_id, item_id, has_need, remarks)
			VALUES ($1,$2,$3,$4,$5)`,
			s.ID, s.PlanID, s.ItemID, s.HasNeed, s.Remarks); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
