package schedule

import (
	"sort"
	"time"

	"github.com/clinicdesk/platform/internal/availability"
	"github.com/clinicdesk/platform/internal/civiltime"
)

// Expand turns availability rules into candidate slots for one civil date.
// Only active rules whose weekday matches contribute. Each rule is walked
// from its start in slot-duration increments; a final increment that does
// not fully fit before the window end is dropped, not truncated. Rules are
// processed independently, so overlapping rules yield overlapping slots.
// Output is ordered by start time, ties broken by clinic id.
func Expand(rules []availability.Rule, date string, weekday time.Weekday, defaultSlotMinutes int) ([]Slot, error) {
	internal := civiltime.ToInternal(weekday)

	var slots []Slot
	for _, rule := range rules {
		if !rule.IsActive || rule.Weekday != internal {
			continue
		}
		start, err := civiltime.MinutesOfDay(rule.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := civiltime.MinutesOfDay(rule.EndTime)
		if err != nil {
			return nil, err
		}
		minutes := rule.SlotMinutes
		if minutes <= 0 {
			minutes = defaultSlotMinutes
		}
		if minutes <= 0 {
			return nil, availability.ErrInvalidDuration
		}
		for m := start; m+minutes <= end; m += minutes {
			slots = append(slots, Slot{
				ClinicID:  rule.ClinicID,
				Date:      date,
				StartTime: civiltime.FormatMinutes(m),
				EndTime:   civiltime.FormatMinutes(m + minutes),
				Available: true,
			})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].ClinicID.String() < slots[j].ClinicID.String()
	})
	return slots, nil
}
