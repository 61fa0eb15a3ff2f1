package admission

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, iv *AbsenceInterval) error
	GetByID(ctx context.Context, id uuid.UUID) (*AbsenceInterval, error)
	// Close sets the end of an open interval.
	Close(ctx context.Context, iv *AbsenceInterval) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*AbsenceInterval, error)
	// LatestOpen returns the newest interval of the kind with no end, or
	// nil when the patient is not currently out for that kind.
	LatestOpen(ctx context.Context, patientID uuid.UUID, kind IntervalKind) (*AbsenceInterval, error)
}
