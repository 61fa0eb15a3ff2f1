package admission

import (
	"time"

	"github.com/google/uuid"
)

// IntervalKind distinguishes hospital transfers from home leave.
type IntervalKind string

const (
	KindHospital IntervalKind = "hospital"
	KindLeave    IntervalKind = "leave"
)

var validKinds = map[IntervalKind]bool{KindHospital: true, KindLeave: true}

// AbsenceInterval maps to the absence_interval table. End is nil while
// the patient is still out. HalfOpen marks intervals whose source event
// treats the end instant as already returned.
type AbsenceInterval struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	PatientID uuid.UUID    `db:"patient_id" json:"patient_id"`
	Kind      IntervalKind `db:"kind" json:"kind"`
	Start     time.Time    `db:"start_at" json:"start_at"`
	End       *time.Time   `db:"end_at" json:"end_at,omitempty"`
	HalfOpen  bool         `db:"half_open" json:"half_open"`
	Reason    *string      `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// EventType is the wire form of the admission feed: discrete events that
// are folded into intervals on ingest.
type EventType string

const (
	EventHospitalAdmission EventType = "hospital_admission"
	EventHospitalDischarge EventType = "hospital_discharge"
	EventLeaveStart        EventType = "leave_start"
	EventLeaveReturn       EventType = "leave_return"
)

// AbsenceEvent is one entry of the event feed.
type AbsenceEvent struct {
	PatientID  uuid.UUID `json:"patient_id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Reason     *string   `json:"reason,omitempty"`
}

// Kind maps an event to the interval kind it opens or closes; ok is
// false for unknown event types.
func (e EventType) Kind() (IntervalKind, bool) {
	switch e {
	case EventHospitalAdmission, EventHospitalDischarge:
		return KindHospital, true
	case EventLeaveStart, EventLeaveReturn:
		return KindLeave, true
	}
	return "", false
}

// Opens reports whether the event starts an absence (as opposed to
// ending one).
func (e EventType) Opens() bool {
	return e == EventHospitalAdmission || e == EventLeaveStart
}
