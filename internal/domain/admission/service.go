package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetClock overrides the service clock, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// RecordEvent applies one feed event. Opening events start a new open
// interval; closing events close the latest open interval of the same
// kind. A closing event with nothing open is rejected, as is a close
// instant before the interval's start. Intervals are append-only and
// never deleted through this path.
func (s *Service) RecordEvent(ctx context.Context, ev *AbsenceEvent) (*AbsenceInterval, error) {
	if ev.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	kind, ok := ev.Type.Kind()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", ev.Type)
	}
	at := ev.OccurredAt
	if at.IsZero() {
		at = s.now()
	}

	if ev.Type.Opens() {
		if cur, err := s.repo.LatestOpen(ctx, ev.PatientID, kind); err != nil {
			return nil, err
		} else if cur != nil {
			return nil, fmt.Errorf("patient already has an open %s interval since %s", kind, cur.Start.Format(time.RFC3339))
		}
		iv := &AbsenceInterval{PatientID: ev.PatientID, Kind: kind, Start: at, Reason: ev.Reason}
		if err := s.repo.Create(ctx, iv); err != nil {
			return nil, err
		}
		return iv, nil
	}

	cur, err := s.repo.LatestOpen(ctx, ev.PatientID, kind)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, fmt.Errorf("no open %s interval to close", kind)
	}
	if at.Before(cur.Start) {
		return nil, fmt.Errorf("%w: end %s before start %s",
			ErrInvalidInterval, at.Format(time.RFC3339), cur.Start.Format(time.RFC3339))
	}
	cur.End = &at
	if err := s.repo.Close(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

// CreateInterval records a complete interval directly, for backfilled
// history where both ends are already known.
func (s *Service) CreateInterval(ctx context.Context, iv *AbsenceInterval) error {
	if iv.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if !validKinds[iv.Kind] {
		return fmt.Errorf("invalid kind: %s", iv.Kind)
	}
	if iv.Start.IsZero() {
		return fmt.Errorf("start_at is required")
	}
	if iv.End != nil && iv.End.Before(iv.Start) {
		return fmt.Errorf("%w: end %s before start %s",
			ErrInvalidInterval, iv.End.Format(time.RFC3339), iv.Start.Format(time.RFC3339))
	}
	return s.repo.Create(ctx, iv)
}

func (s *Service) ListIntervals(ctx context.Context, patientID uuid.UUID) ([]*AbsenceInterval, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// CheckAbsence reports whether the patient was out of the facility at
// the given instant.
func (s *Service) CheckAbsence(ctx context.Context, patientID uuid.UUID, at time.Time) (bool, error) {
	intervals, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return false, err
	}
	return IsAbsent(at, intervals)
}
