package admission

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func ts(y int, m time.Month, day, hour int) time.Time {
	return time.Date(y, m, day, hour, 0, 0, 0, time.UTC)
}

func closed(start, end time.Time) *AbsenceInterval {
	return &AbsenceInterval{Kind: KindHospital, Start: start, End: &end}
}

func TestIsAbsent_ClosedInterval(t *testing.T) {
	iv := closed(ts(2024, time.May, 1, 10), ts(2024, time.May, 3, 18))
	intervals := []*AbsenceInterval{iv}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{ts(2024, time.May, 1, 9), false},
		{ts(2024, time.May, 1, 10), true},
		{ts(2024, time.May, 2, 0), true},
		{ts(2024, time.May, 3, 18), true},
		{ts(2024, time.May, 3, 19), false},
	}
	for _, tc := range cases {
		got, err := IsAbsent(tc.at, intervals)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Errorf("IsAbsent(%s) = %v, want %v", tc.at.Format(time.RFC3339), got, tc.want)
		}
	}
}

func TestIsAbsent_HalfOpenEndExcluded(t *testing.T) {
	iv := closed(ts(2024, time.May, 1, 10), ts(2024, time.May, 3, 18))
	iv.HalfOpen = true

	got, err := IsAbsent(ts(2024, time.May, 3, 18), []*AbsenceInterval{iv})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("half-open interval must exclude its end instant")
	}
	got, _ = IsAbsent(ts(2024, time.May, 3, 17), []*AbsenceInterval{iv})
	if !got {
		t.Error("instant before the end must still be covered")
	}
}

func TestIsAbsent_OpenInterval(t *testing.T) {
	iv := &AbsenceInterval{Kind: KindLeave, Start: ts(2024, time.May, 1, 10)}
	if got, _ := IsAbsent(ts(2030, time.January, 1, 0), []*AbsenceInterval{iv}); !got {
		t.Error("open interval must cover any instant after its start")
	}
	if got, _ := IsAbsent(ts(2024, time.April, 30, 0), []*AbsenceInterval{iv}); got {
		t.Error("open interval must not cover instants before its start")
	}
}

func TestIsAbsent_InstantInterval(t *testing.T) {
	at := ts(2024, time.May, 1, 10)
	iv := closed(at, at)
	got, err := IsAbsent(at, []*AbsenceInterval{iv})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("start == end must cover exactly that instant")
	}
}

func TestIsAbsent_EndBeforeStart(t *testing.T) {
	iv := closed(ts(2024, time.May, 3, 0), ts(2024, time.May, 1, 0))
	queries := []time.Time{
		ts(2024, time.May, 2, 0),
		ts(2024, time.April, 1, 0), // before the malformed interval's start
		ts(2024, time.June, 1, 0),
	}
	for _, at := range queries {
		_, err := IsAbsent(at, []*AbsenceInterval{iv})
		if !errors.Is(err, ErrInvalidInterval) {
			t.Fatalf("IsAbsent(%s): expected ErrInvalidInterval, got %v", at.Format(time.RFC3339), err)
		}
	}
}

func TestIsAbsent_EmptyList(t *testing.T) {
	got, err := IsAbsent(ts(2024, time.May, 1, 0), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("a patient with no intervals is never absent")
	}
}

func TestIsAbsent_AnyIntervalMatches(t *testing.T) {
	intervals := []*AbsenceInterval{
		closed(ts(2024, time.January, 1, 0), ts(2024, time.January, 5, 0)),
		closed(ts(2024, time.March, 1, 0), ts(2024, time.March, 5, 0)),
	}
	if got, _ := IsAbsent(ts(2024, time.March, 2, 0), intervals); !got {
		t.Error("membership in the second interval must count")
	}
	if got, _ := IsAbsent(ts(2024, time.February, 1, 0), intervals); got {
		t.Error("gap between intervals must not count")
	}
}

func TestFoldEvents(t *testing.T) {
	pid := uuid.New()
	events := []*AbsenceEvent{
		{PatientID: pid, Type: EventHospitalDischarge, OccurredAt: ts(2024, time.May, 3, 0)},
		{PatientID: pid, Type: EventHospitalAdmission, OccurredAt: ts(2024, time.May, 1, 0)},
		{PatientID: pid, Type: EventLeaveStart, OccurredAt: ts(2024, time.June, 1, 0)},
	}
	intervals, err := FoldEvents(events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(intervals))
	}

	hosp := intervals[0]
	if hosp.Kind != KindHospital || hosp.End == nil || !hosp.End.Equal(ts(2024, time.May, 3, 0)) {
		t.Errorf("hospital pair folded wrong: %+v", hosp)
	}
	leave := intervals[1]
	if leave.Kind != KindLeave || leave.End != nil {
		t.Errorf("leave without return must stay open: %+v", leave)
	}
}

func TestFoldEvents_DischargeWithoutAdmission(t *testing.T) {
	events := []*AbsenceEvent{
		{PatientID: uuid.New(), Type: EventHospitalDischarge, OccurredAt: ts(2024, time.May, 3, 0)},
	}
	intervals, err := FoldEvents(events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intervals) != 0 {
		t.Errorf("unmatched discharge must be dropped, got %d intervals", len(intervals))
	}
}

func TestFoldEvents_UnknownType(t *testing.T) {
	events := []*AbsenceEvent{{PatientID: uuid.New(), Type: "bogus", OccurredAt: ts(2024, time.May, 1, 0)}}
	if _, err := FoldEvents(events); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}
