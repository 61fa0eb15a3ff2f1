package careplan

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths_ClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{d(2024, time.January, 31), 1, d(2024, time.February, 29)},
		{d(2023, time.January, 31), 1, d(2023, time.February, 28)},
		{d(2024, time.January, 31), 6, d(2024, time.July, 31)},
		{d(2024, time.August, 31), 1, d(2024, time.September, 30)},
		{d(2024, time.November, 15), 2, d(2025, time.January, 15)},
	}
	for _, tc := range cases {
		if got := AddMonths(tc.in, tc.n); !got.Equal(tc.want) {
			t.Errorf("AddMonths(%s, %d) = %s, want %s", tc.in.Format("2006-01-02"), tc.n, got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func TestComputeDueDate_AnnualLeapDay(t *testing.T) {
	got := ComputeDueDate(PlanAnnual, d(2024, time.February, 29))
	if want := d(2025, time.February, 28); !got.Equal(want) {
		t.Errorf("got %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestComputeDueDate_SemiAnnualMonthEnd(t *testing.T) {
	got := ComputeDueDate(PlanSemiAnnual, d(2024, time.January, 31))
	if want := d(2024, time.July, 31); !got.Equal(want) {
		t.Errorf("got %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestComputeDueDate_FirstMonthUsesSixMonths(t *testing.T) {
	got := ComputeDueDate(PlanFirstMonth, d(2024, time.March, 15))
	if want := d(2024, time.September, 15); !got.Equal(want) {
		t.Errorf("got %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestComputeAnchorDate(t *testing.T) {
	admission := d(2024, time.March, 1)
	today := d(2024, time.October, 10)

	if got := ComputeAnchorDate(PlanFirstMonth, admission, nil, today); !got.Equal(d(2024, time.March, 31)) {
		t.Errorf("first month anchor = %s, want admission+30d", got.Format("2006-01-02"))
	}

	prior := &CarePlan{ReviewDueDate: d(2024, time.September, 30)}
	if got := ComputeAnchorDate(PlanSemiAnnual, admission, prior, today); !got.Equal(prior.ReviewDueDate) {
		t.Errorf("continuation anchor = %s, want prior due date", got.Format("2006-01-02"))
	}

	if got := ComputeAnchorDate(PlanAnnual, admission, nil, today); !got.Equal(today) {
		t.Errorf("anchor without prior = %s, want today", got.Format("2006-01-02"))
	}
}

func TestNextVersionNumber(t *testing.T) {
	if got := NextVersionNumber(nil); got != 1 {
		t.Errorf("empty chain: got %d, want 1", got)
	}
	plans := []*CarePlan{{VersionNumber: 1}, {VersionNumber: 3}}
	if got := NextVersionNumber(plans); got != 4 {
		t.Errorf("gapped chain: got %d, want 4", got)
	}
}

func TestLatestPlan_TieBreaksOnVersion(t *testing.T) {
	day := d(2024, time.May, 1)
	v1 := &CarePlan{ID: uuid.New(), PlanDate: day, VersionNumber: 1}
	v2 := &CarePlan{ID: uuid.New(), PlanDate: day, VersionNumber: 2}
	if got := LatestPlan([]*CarePlan{v1, v2}); got != v2 {
		t.Errorf("expected higher version to win the tie")
	}
	if LatestPlan(nil) != nil {
		t.Error("expected nil for empty chain")
	}
}

func TestIsSuperseded(t *testing.T) {
	early := &CarePlan{ID: uuid.New(), PlanDate: d(2024, time.January, 1), ReviewDueDate: d(2024, time.July, 1), VersionNumber: 1}

	// Next plan dated on the review due date covers the period.
	covering := &CarePlan{ID: uuid.New(), PlanDate: d(2024, time.July, 1), ReviewDueDate: d(2025, time.January, 1), VersionNumber: 2}
	if !IsSuperseded(early, []*CarePlan{early, covering}) {
		t.Error("expected superseded when next plan date is on the due date")
	}

	// Next plan dated before the due date does not supersede.
	interim := &CarePlan{ID: uuid.New(), PlanDate: d(2024, time.April, 1), ReviewDueDate: d(2024, time.October, 1), VersionNumber: 2}
	if IsSuperseded(early, []*CarePlan{early, interim}) {
		t.Error("expected not superseded when next plan predates the due date")
	}

	if IsSuperseded(covering, []*CarePlan{early, covering}) {
		t.Error("last plan in the chain can never be superseded")
	}
}

func TestEvaluateSchedule(t *testing.T) {
	plan := &CarePlan{ID: uuid.New(), PlanDate: d(2024, time.January, 1), ReviewDueDate: d(2024, time.July, 1), VersionNumber: 1}
	chain := []*CarePlan{plan}

	if got := EvaluateSchedule(plan, chain, d(2024, time.July, 2)); got != StateOverdue {
		t.Errorf("past due: got %s, want %s", got, StateOverdue)
	}
	if got := EvaluateSchedule(plan, chain, d(2024, time.June, 15)); got != StateDueSoon {
		t.Errorf("inside window: got %s, want %s", got, StateDueSoon)
	}
	if got := EvaluateSchedule(plan, chain, d(2024, time.June, 1)); got != StateDueSoon {
		t.Errorf("window boundary: got %s, want %s", got, StateDueSoon)
	}
	if got := EvaluateSchedule(plan, chain, d(2024, time.March, 1)); got != StateOnTrack {
		t.Errorf("far out: got %s, want %s", got, StateOnTrack)
	}

	next := &CarePlan{ID: uuid.New(), PlanDate: d(2024, time.July, 1), ReviewDueDate: d(2025, time.January, 1), VersionNumber: 2}
	if got := EvaluateSchedule(plan, []*CarePlan{plan, next}, d(2024, time.August, 1)); got != StateSuperseded {
		t.Errorf("superseded beats overdue: got %s, want %s", got, StateSuperseded)
	}
}

func TestEvaluateSchedule_PartialDayCountsTowardWindow(t *testing.T) {
	due := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
	plan := &CarePlan{ID: uuid.New(), PlanDate: d(2024, time.January, 1), ReviewDueDate: due, VersionNumber: 1}
	now := time.Date(2024, time.June, 30, 18, 0, 0, 0, time.UTC)
	if got := EvaluateSchedule(plan, []*CarePlan{plan}, now); got != StateDueSoon {
		t.Errorf("got %s, want %s", got, StateDueSoon)
	}
}

func TestValidateChain(t *testing.T) {
	admission := d(2024, time.March, 1)
	today := d(2024, time.October, 10)

	early := &CarePlan{PlanType: PlanFirstMonth, PlanDate: d(2024, time.March, 15), VersionNumber: 1}
	err := ValidateChain(early, nil, admission, today)
	if !errors.Is(err, ErrInvalidPlanChain) {
		t.Fatalf("expected ErrInvalidPlanChain for date before anchor, got %v", err)
	}

	prior := &CarePlan{ID: uuid.New(), PlanDate: d(2024, time.March, 31), ReviewDueDate: d(2024, time.September, 30), VersionNumber: 1}
	dup := &CarePlan{PlanType: PlanSemiAnnual, PlanDate: d(2024, time.September, 30), VersionNumber: 1}
	err = ValidateChain(dup, []*CarePlan{prior}, admission, today)
	if !errors.Is(err, ErrInvalidPlanChain) {
		t.Fatalf("expected ErrInvalidPlanChain for version collision, got %v", err)
	}

	ok := &CarePlan{PlanType: PlanSemiAnnual, PlanDate: d(2024, time.September, 30), VersionNumber: 2}
	if err := ValidateChain(ok, []*CarePlan{prior}, admission, today); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
