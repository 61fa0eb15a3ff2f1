package vitals

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *VitalsRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*VitalsRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*VitalsRecord, error)
}
