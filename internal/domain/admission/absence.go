package admission

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval reports a closed interval whose end precedes its
// start. Malformed intervals are rejected, never reordered.
var ErrInvalidInterval = errors.New("invalid interval")

// Contains reports whether at falls inside the interval. An open
// interval covers [Start, +inf). A closed interval is inclusive at both
// bounds, exclusive at the end when HalfOpen; start == end covers
// exactly that instant.
func (iv *AbsenceInterval) Contains(at time.Time) (bool, error) {
	// A malformed interval is rejected regardless of where the query
	// instant falls.
	if iv.End != nil && iv.End.Before(iv.Start) {
		return false, fmt.Errorf("%w: end %s before start %s",
			ErrInvalidInterval, iv.End.Format(time.RFC3339), iv.Start.Format(time.RFC3339))
	}
	if at.Before(iv.Start) {
		return false, nil
	}
	if iv.End == nil {
		return true, nil
	}
	if iv.HalfOpen {
		return at.Before(*iv.End), nil
	}
	return !at.After(*iv.End), nil
}

// IsAbsent reports whether the patient was out of the facility at the
// given instant: true iff at falls in any of the intervals. An empty
// interval list means never absent.
func IsAbsent(at time.Time, intervals []*AbsenceInterval) (bool, error) {
	for _, iv := range intervals {
		in, err := iv.Contains(at)
		if err != nil {
			return false, err
		}
		if in {
			return true, nil
		}
	}
	return false, nil
}

// FoldEvents turns an event feed into intervals. An opening event starts
// a new open interval of its kind; a closing event closes the latest
// open interval of the same kind, or is dropped when none is open.
// Events are processed in occurrence order.
func FoldEvents(events []*AbsenceEvent) ([]*AbsenceInterval, error) {
	ordered := make([]*AbsenceEvent, len(events))
	copy(ordered, events)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].OccurredAt.Before(ordered[j-1].OccurredAt); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	var intervals []*AbsenceInterval
	open := map[IntervalKind]*AbsenceInterval{}
	for _, ev := range ordered {
		kind, ok := ev.Type.Kind()
		if !ok {
			return nil, fmt.Errorf("unknown event type: %s", ev.Type)
		}
		if ev.Type.Opens() {
			if open[kind] != nil {
				// A second opening event of the same kind implies the
				// close was never recorded; the earlier stay remains open.
				continue
			}
			iv := &AbsenceInterval{PatientID: ev.PatientID, Kind: kind, Start: ev.OccurredAt, Reason: ev.Reason}
			open[kind] = iv
			intervals = append(intervals, iv)
			continue
		}
		cur := open[kind]
		if cur == nil {
			continue
		}
		end := ev.OccurredAt
		cur.End = &end
		open[kind] = nil
	}
	return intervals, nil
}
