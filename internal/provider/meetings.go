package provider

import (
	"github.com/iliyamo/schedule-builder/internal/model"
)

// ExpandDays turns a day cluster and a time range into one MeetingTime
// per weekday in the cluster.  Weekend days are dropped because the
// weekly grid only covers Monday through Friday.
func ExpandDays(days string, start, end model.Clock) ([]model.MeetingTime, error) {
	parsed, err := model.ParseDays(days)
	if err != nil {
		return nil, err
	}
	out := make([]model.MeetingTime, 0, len(parsed))
	for _, d := range parsed {
		if !model.IsWeekday(d) {
			continue
		}
		m, err := model.NewMeetingTime(d, start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Dedupe removes repeated slots while keeping first-seen order; both
// providers list the same lecture more than once for cross-listed rooms.
func Dedupe(in []model.MeetingTime) []model.MeetingTime {
	seen := make(map[model.MeetingTime]struct{}, len(in))
	out := in[:0:0]
	for _, m := range in {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
