package schedule

import (
	"slices"

	"github.com/iliyamo/schedule-builder/internal/model"
)

// WeeklySlot is a meeting in display form: "Tu", "9:30am", "10:45am".
type WeeklySlot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeeklyView lists the section's meetings in display form, in the order
// the section stores them.
func WeeklyView(s model.Section) []WeeklySlot {
	out := make([]WeeklySlot, 0, len(s.Meetings))
	for _, m := range s.Meetings {
		out = append(out, WeeklySlot{Day: m.DayLabel(), Start: m.Start.String(), End: m.End.String()})
	}
	return out
}

// GroupedWeeklyView folds meetings sharing a time range into one entry,
// keyed by the range: {"10:00am-10:50am": "MWF", "2:00pm-3:15pm": "TuTh"}.
func GroupedWeeklyView(s model.Section) map[string]string {
	byRange := make(map[string][]model.MeetingTime)
	for _, m := range s.Meetings {
		key := m.Start.String() + "-" + m.End.String()
		byRange[key] = append(byRange[key], m)
	}
	out := make(map[string]string, len(byRange))
	for key, ms := range byRange {
		slices.SortFunc(ms, func(a, b model.MeetingTime) int { return int(a.Day) - int(b.Day) })
		days := ""
		for _, m := range ms {
			days += m.DayLabel()
		}
		out[key] = days
	}
	return out
}
