package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UnableToMeasurePrefix opens the remarks of a record taken while the
// patient could not be measured.
const UnableToMeasurePrefix = "unable to measure"

// AbsenceChecker is the slice of the admission domain the gate needs.
type AbsenceChecker interface {
	CheckAbsence(ctx context.Context, patientID uuid.UUID, at time.Time) (bool, error)
}

type Service struct {
	repo     Repository
	absences AbsenceChecker
	now      func() time.Time
}

func NewService(repo Repository, absences AbsenceChecker) *Service {
	return &Service{repo: repo, absences: absences, now: time.Now}
}

// SetClock overrides the service clock, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CreateRecord persists a measurement after the absence gate. When the
// patient was out of the facility at the record instant the measurement
// values are dropped and the record is stored as unable-to-measure with
// the absence noted in remarks. The interval set is fetched on every
// call; the gate never works from a cached read.
func (s *Service) CreateRecord(ctx context.Context, r *VitalsRecord) error {
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if !validTypes[r.RecordType] {
		return fmt.Errorf("invalid record_type: %s", r.RecordType)
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = s.now()
	}

	if r.Unable {
		r.clearValues()
		if r.Remarks == nil {
			reason := UnableToMeasurePrefix
			r.Remarks = &reason
		}
		return s.repo.Create(ctx, r)
	}

	absent, err := s.absences.CheckAbsence(ctx, r.PatientID, r.RecordedAt)
	if err != nil {
		return err
	}
	if absent {
		r.Unable = true
		r.clearValues()
		reason := fmt.Sprintf("%s: patient absent at %s", UnableToMeasurePrefix, r.RecordedAt.Format(time.RFC3339))
		r.Remarks = &reason
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*VitalsRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*VitalsRecord, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.After(to) {
		return nil, fmt.Errorf("from %s after to %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return s.repo.ListByPatient(ctx, patientID, from, to)
}
