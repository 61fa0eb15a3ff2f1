package vitals

import (
	"time"

	"github.com/google/uuid"
)

// RecordType identifies which measurement a record carries.
type RecordType string

const (
	TypeBloodPressure RecordType = "blood_pressure"
	TypePulse         RecordType = "pulse"
	TypeTemperature   RecordType = "temperature"
	TypeSpO2          RecordType = "spo2"
	TypeRespiration   RecordType = "respiration"
	TypeBloodSugar    RecordType = "blood_sugar"
	TypeWeight        RecordType = "weight"
)

var validTypes = map[RecordType]bool{
	TypeBloodPressure: true, TypePulse: true, TypeTemperature: true,
	TypeSpO2: true, TypeRespiration: true, TypeBloodSugar: true, TypeWeight: true,
}

// VitalsRecord maps to the vitals_record table. A record flagged Unable
// carries no measurement values; Remarks holds the reason.
type VitalsRecord struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	RecordType  RecordType `db:"record_type" json:"record_type"`
	RecordedAt  time.Time  `db:"recorded_at" json:"recorded_at"`
	Systolic    *int       `db:"systolic" json:"systolic,omitempty"`
	Diastolic   *int       `db:"diastolic" json:"diastolic,omitempty"`
	Pulse       *int       `db:"pulse" json:"pulse,omitempty"`
	Temperature *float64   `db:"temperature" json:"temperature,omitempty"`
	SpO2        *int       `db:"spo2" json:"spo2,omitempty"`
	Respiration *int       `db:"respiration" json:"respiration,omitempty"`
	BloodSugar  *float64   `db:"blood_sugar" json:"blood_sugar,omitempty"`
	Weight      *float64   `db:"weight" json:"weight,omitempty"`
	Unable      bool       `db:"unable" json:"unable"`
	Remarks     *string    `db:"remarks" json:"remarks,omitempty"`
	RecordedBy  *string    `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// clearValues drops every measurement from the record.
func (r *VitalsRecord) clearValues() {
	r.Systolic, r.Diastolic, r.Pulse = nil, nil, nil
	r.Temperature, r.SpO2, r.Respiration = nil, nil, nil
	r.BloodSugar, r.Weight = nil, nil
}
