package careplan

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidPlanChain reports a plan that contradicts its patient's plan
// chain: a plan date before the computed anchor, or a version number that
// is already taken.
var ErrInvalidPlanChain = errors.New("invalid plan chain")

// firstMonthAnchorOffset is how long after admission the first-month
// plan is anchored.
const firstMonthAnchorOffset = 30 * 24 * time.Hour

// DueSoonWindowDays is the look-ahead window for flagging an upcoming
// review.
const DueSoonWindowDays = 30

// AddMonths adds n calendar months to d, clamping the day-of-month to
// the last valid day of the target month. Jan 31 + 1 month is the last
// day of February, never a rollover into March.
func AddMonths(d time.Time, n int) time.Time {
	year, month, day := d.Date()
	m := int(month) + n
	year += (m - 1) / 12
	m = (m-1)%12 + 1
	if m <= 0 {
		m += 12
		year--
	}
	if last := daysIn(year, time.Month(m)); day > last {
		day = last
	}
	return time.Date(year, time.Month(m), day, d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ComputeDueDate derives a plan's review due date from its type and
// anchor date: six calendar months for first-month and semi-annual
// plans, twelve for annual plans.
func ComputeDueDate(planType PlanType, anchor time.Time) time.Time {
	if planType == PlanAnnual {
		return AddMonths(anchor, 12)
	}
	return AddMonths(anchor, 6)
}

// ComputeAnchorDate derives the date a new plan should be anchored on.
// A first-month plan is anchored 30 days after the patient's admission.
// Semi-annual and annual plans continue from the prior plan's review due
// date, or start today when the patient has no prior plan. The caller
// supplies today so the function stays deterministic.
func ComputeAnchorDate(planType PlanType, admissionDate time.Time, prior *CarePlan, today time.Time) time.Time {
	if planType == PlanFirstMonth {
		return admissionDate.Add(firstMonthAnchorOffset)
	}
	if prior != nil {
		return prior.ReviewDueDate
	}
	return today
}

// NextVersionNumber returns max(version)+1 over the patient's existing
// plans, or 1 when none exist. Gaps left by deleted plans are preserved,
// never reused.
func NextVersionNumber(plans []*CarePlan) int {
	max := 0
	for _, p := range plans {
		if p.VersionNumber > max {
			max = p.VersionNumber
		}
	}
	return max + 1
}

// LatestPlan returns the plan with the greatest plan date among the
// patient's plans, or nil when there are none. Ties fall to the higher
// version number.
func LatestPlan(plans []*CarePlan) *CarePlan {
	var latest *CarePlan
	for _, p := range plans {
		if latest == nil || p.PlanDate.After(latest.PlanDate) ||
			(p.PlanDate.Equal(latest.PlanDate) && p.VersionNumber > latest.VersionNumber) {
			latest = p
		}
	}
	return latest
}

// sortByPlanDate returns the plans ordered by plan date ascending,
// breaking ties by version number so the chain order is stable.
func sortByPlanDate(plans []*CarePlan) []*CarePlan {
	ordered := make([]*CarePlan, len(plans))
	copy(ordered, plans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].PlanDate.Equal(ordered[j].PlanDate) {
			return ordered[i].PlanDate.Before(ordered[j].PlanDate)
		}
		return ordered[i].VersionNumber < ordered[j].VersionNumber
	})
	return ordered
}

// IsSuperseded reports whether plan's review deadline is no longer
// actionable because a later plan already covers that period: ordered by
// plan date, the immediately following plan's date is on or after plan's
// review due date.
func IsSuperseded(plan *CarePlan, plans []*CarePlan) bool {
	ordered := sortByPlanDate(plans)
	for i, p := range ordered {
		if p.ID != plan.ID {
			continue
		}
		if i == len(ordered)-1 {
			return false
		}
		next := ordered[i+1]
		return !next.PlanDate.Before(plan.ReviewDueDate)
	}
	return false
}

// ScheduleState summarizes where a plan stands against its review
// deadline.
type ScheduleState string

const (
	StateSuperseded ScheduleState = "superseded"
	StateOverdue    ScheduleState = "overdue"
	StateDueSoon    ScheduleState = "due_soon"
	StateOnTrack    ScheduleState = "on_track"
)

// EvaluateSchedule classifies plan against now. Supersession is checked
// first; overdue takes precedence over due-soon (the two cannot both
// hold, daysUntil is negative for an overdue plan).
func EvaluateSchedule(plan *CarePlan, plans []*CarePlan, now time.Time) ScheduleState {
	if IsSuperseded(plan, plans) {
		return StateSuperseded
	}
	if plan.ReviewDueDate.Before(now) {
		return StateOverdue
	}
	days := int(plan.ReviewDueDate.Sub(now).Hours() / 24)
	if plan.ReviewDueDate.Sub(now)%(24*time.Hour) > 0 {
		days++ // partial day still counts toward the window
	}
	if days > 0 && days <= DueSoonWindowDays {
		return StateDueSoon
	}
	return StateOnTrack
}

// ValidateChain checks a candidate plan against the patient's existing
// plans before it is persisted. existing must not contain the candidate.
func ValidateChain(plan *CarePlan, existing []*CarePlan, admissionDate, today time.Time) error {
	anchor := ComputeAnchorDate(plan.PlanType, admissionDate, LatestPlan(existing), today)
	if plan.PlanDate.Before(anchor) {
		return fmt.Errorf("%w: plan date %s precedes anchor %s",
			ErrInvalidPlanChain, plan.PlanDate.Format("2006-01-02"), anchor.Format("2006-01-02"))
	}
	for _, p := range existing {
		if p.VersionNumber == plan.VersionNumber {
			return fmt.Errorf("%w: version %d already assigned", ErrInvalidPlanChain, plan.VersionNumber)
		}
	}
	return nil
}
