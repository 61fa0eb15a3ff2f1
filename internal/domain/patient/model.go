package patient

import (
	"time"

	"github.com/google/uuid"
)

// ResidencyStatus tracks whether a patient currently lives in the
// facility.
type ResidencyStatus string

const (
	StatusResident   ResidencyStatus = "resident"
	StatusDischarged ResidencyStatus = "discharged"
	StatusDeceased   ResidencyStatus = "deceased"
)

var validStatuses = map[ResidencyStatus]bool{
	StatusResident: true, StatusDischarged: true, StatusDeceased: true,
}

// Patient maps to the patient table. AdmissionDate anchors first-month
// care-plan scheduling.
type Patient struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	AdmissionDate   time.Time       `db:"admission_date" json:"admission_date"`
	ResidencyStatus ResidencyStatus `db:"residency_status" json:"residency_status"`
	BedNumber       *string         `db:"bed_number" json:"bed_number,omitempty"`
	BirthDate       *time.Time      `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
