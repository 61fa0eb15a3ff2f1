package careplan

import "github.com/google/uuid"

// OverallNeed derives the "overall" flag for a plan: true iff at least
// one non-overall item is marked as a need. The overall item's own
// stored flag is never read as a source value.
func OverallNeed(settings []*NursingNeedSetting, items []*NursingNeedItem) bool {
	overall := overallItemID(items)
	for _, s := range settings {
		if overall != nil && s.ItemID == *overall {
			continue
		}
		if s.HasNeed {
			return true
		}
	}
	return false
}

// ApplyOverall overwrites the overall item's setting with the derived
// value, appending one if the plan has no setting for it yet. Whatever
// transient value the caller carried for the overall item is discarded.
func ApplyOverall(settings []*NursingNeedSetting, items []*NursingNeedItem) []*NursingNeedSetting {
	overall := overallItemID(items)
	if overall == nil {
		return settings
	}
	derived := OverallNeed(settings, items)
	for _, s := range settings {
		if s.ItemID == *overall {
			s.HasNeed = derived
			return settings
		}
	}
	return append(settings, &NursingNeedSetting{ItemID: *overall, HasNeed: derived})
}

func overallItemID(items []*NursingNeedItem) *uuid.UUID {
	for _, it := range items {
		if it.IsOverall() {
			id := it.ID
			return &id
		}
	}
	return nil
}
