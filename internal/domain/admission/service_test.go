package admission

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct{ store map[uuid.UUID]*AbsenceInterval }

func newMockRepo() *mockRepo { return &mockRepo{store: make(map[uuid.UUID]*AbsenceInterval)} }
func (m *mockRepo) Create(_ context.Context, iv *AbsenceInterval) error {
	iv.ID = uuid.New(); m.store[iv.ID] = iv; return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*AbsenceInterval, error) {
	iv, ok := m.store[id]; if !ok { return nil, fmt.Errorf("not found") }; return iv, nil
}
func (m *mockRepo) Close(_ context.Context, iv *AbsenceInterval) error {
	if _, ok := m.store[iv.ID]; !ok { return fmt.Errorf("not found") }; m.store[iv.ID] = iv; return nil
}
func (m *mockRepo) ListByPatient(_ context.Context, pid uuid.UUID) ([]*AbsenceInterval, error) {
	var r []*AbsenceInterval; for _, iv := range m.store { if iv.PatientID == pid { r = append(r, iv) } }; return r, nil
}
func (m *mockRepo) LatestOpen(_ context.Context, pid uuid.UUID, kind IntervalKind) (*AbsenceInterval, error) {
	var latest *AbsenceInterval
	for _, iv := range m.store {
		if iv.PatientID != pid || iv.Kind != kind || iv.End != nil { continue }
		if latest == nil || iv.Start.After(latest.Start) { latest = iv }
	}
	return latest, nil
}

func TestRecordEvent_PairClosesInterval(t *testing.T) {
	svc := NewService(newMockRepo())
	pid := uuid.New()
	ctx := context.Background()

	opened, err := svc.RecordEvent(ctx, &AbsenceEvent{PatientID: pid, Type: EventHospitalAdmission, OccurredAt: ts(2024, time.May, 1, 10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opened.End != nil {
		t.Fatal("admission must open an interval")
	}

	closed, err := svc.RecordEvent(ctx, &AbsenceEvent{PatientID: pid, Type: EventHospitalDischarge, OccurredAt: ts(2024, time.May, 3, 18)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed.ID != opened.ID || closed.End == nil {
		t.Fatal("discharge must close the open interval")
	}

	absent, err := svc.CheckAbsence(ctx, pid, ts(2024, time.May, 2, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !absent {
		t.Error("patient must be absent inside the stay")
	}
}

func TestRecordEvent_DoubleOpenRejected(t *testing.T) {
	svc := NewService(newMockRepo())
	pid := uuid.New()
	ctx := context.Background()

	if _, err := svc.RecordEvent(ctx, &AbsenceEvent{PatientID: pid, Type: EventLeaveStart, OccurredAt: ts(2024, time.May, 1, 10)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.RecordEvent(ctx, &AbsenceEvent{PatientID: pid, Type: EventLeaveStart, OccurredAt: ts(2024, time.May, 2, 10)}); err == nil {
		t.Fatal("second leave start without a return must be rejected")
	}
}

func TestRecordEvent_CloseWithoutOpenRejected(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.RecordEvent(context.Background(), &AbsenceEvent{PatientID: uuid.New(), Type: EventHospitalDischarge, OccurredAt: ts(2024, time.May, 3, 0)})
	if err == nil {
		t.Fatal("discharge without admission must be rejected")
	}
}

func TestRecordEvent_CloseBeforeStartRejected(t *testing.T) {
	svc := NewService(newMockRepo())
	pid := uuid.New()
	ctx := context.Background()

	if _, err := svc.RecordEvent(ctx, &AbsenceEvent{PatientID: pid, Type: EventHospitalAdmission, OccurredAt: ts(2024, time.May, 3, 0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.RecordEvent(ctx, &AbsenceEvent{PatientID: pid, Type: EventHospitalDischarge, OccurredAt: ts(2024, time.May, 1, 0)})
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestRecordEvent_IndependentKinds(t *testing.T) {
	svc := NewService(newMockRepo())
	pid := uuid.New()
	ctx := context.Background()

	if _, err := svc.RecordEvent(ctx, &AbsenceEvent{PatientID: pid, Type: EventHospitalAdmission, OccurredAt: ts(2024, time.May, 1, 0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A leave interval may open while a hospital interval is open.
	if _, err := svc.RecordEvent(ctx, &AbsenceEvent{PatientID: pid, Type: EventLeaveStart, OccurredAt: ts(2024, time.May, 2, 0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateInterval_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	pid := uuid.New()

	end := ts(2024, time.May, 1, 0)
	bad := &AbsenceInterval{PatientID: pid, Kind: KindHospital, Start: ts(2024, time.May, 3, 0), End: &end}
	if err := svc.CreateInterval(ctx, bad); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if err := svc.CreateInterval(ctx, &AbsenceInterval{PatientID: pid, Kind: "bogus", Start: ts(2024, time.May, 1, 0)}); err == nil {
		t.Error("expected error for invalid kind")
	}
	if err := svc.CreateInterval(ctx, &AbsenceInterval{PatientID: pid, Kind: KindLeave, Start: ts(2024, time.May, 1, 0)}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckAbsence_UnknownPatient(t *testing.T) {
	svc := NewService(newMockRepo())
	absent, err := svc.CheckAbsence(context.Background(), uuid.New(), ts(2024, time.May, 1, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if absent {
		t.Error("unknown patient is never absent")
	}
}
