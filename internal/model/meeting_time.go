package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidMeetingTime is returned when a meeting does not start strictly
// before it ends, or when a clock value cannot be parsed.
var ErrInvalidMeetingTime = errors.New("invalid meeting time")

// Clock is a time of day with minute precision, stored as minutes since
// midnight.  Valid values are in [0, 24*60).
type Clock int

// NewClock builds a Clock from a 24-hour hour and minute.
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidMeetingTime, hour, minute)
	}
	return Clock(hour*60 + minute), nil
}

// ParseClock accepts the 12-hour forms used by both upstream providers
// ("9:00am", "12:15PM", "4pm") as well as a 24-hour "15:04" form.
func ParseClock(s string) (Clock, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return 0, fmt.Errorf("%w: empty clock", ErrInvalidMeetingTime)
	}
	meridiem := ""
	if strings.HasSuffix(raw, "am") || strings.HasSuffix(raw, "pm") {
		meridiem = raw[len(raw)-2:]
		raw = strings.TrimSpace(raw[:len(raw)-2])
	}
	hourPart, minutePart, found := strings.Cut(raw, ":")
	if !found {
		minutePart = "00"
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMeetingTime, s)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || len(minutePart) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMeetingTime, s)
	}
	switch meridiem {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMeetingTime, s)
		}
		hour %= 12
		if meridiem == "pm" {
			hour += 12
		}
	}
	return NewClock(hour, minute)
}

// Hour returns the 24-hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// String renders the clock the way the course pages print it: "9:00am".
func (c Clock) String() string {
	h := c.Hour()
	suffix := "am"
	if h >= 12 {
		suffix = "pm"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d%s", h, c.Minute(), suffix)
}

// dayLabels are the abbreviations used by the registrar ("MWF", "TuTh").
var dayLabels = map[time.Weekday]string{
	time.Monday:    "M",
	time.Tuesday:   "Tu",
	time.Wednesday: "W",
	time.Thursday:  "Th",
	time.Friday:    "F",
	time.Saturday:  "Sa",
	time.Sunday:    "Su",
}

// DayLabel returns the registrar abbreviation for a weekday.
func DayLabel(d time.Weekday) string { return dayLabels[d] }

// ParseDays splits a day cluster such as "MWF" or "TuTh" into weekdays in
// the order they appear.  Letters that do not name a weekday are
// reported as an error.
func ParseDays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	rest := strings.TrimSpace(s)
	for rest != "" {
		matched := false
		// two-letter labels first so "Th" is not read as "T" + "h"
		for _, d := range []time.Weekday{time.Tuesday, time.Thursday, time.Saturday, time.Sunday, time.Monday, time.Wednesday, time.Friday} {
			label := dayLabels[d]
			if strings.HasPrefix(rest, label) {
				days = append(days, d)
				rest = rest[len(label):]
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: unknown day in %q", ErrInvalidMeetingTime, s)
		}
	}
	return days, nil
}

// IsWeekday reports whether d falls Monday through Friday.
func IsWeekday(d time.Weekday) bool {
	return d >= time.Monday && d <= time.Friday
}

// MeetingTime is one weekly slot of a section.  It is a comparable value:
// two meeting times are equal iff day, start and end all match, so it
// can be used directly as a map key for deduplication.
type MeetingTime struct {
	Day   time.Weekday // day of week
	Start Clock        // inclusive start
	End   Clock        // exclusive end, always after Start
}

// NewMeetingTime validates start < end.
func NewMeetingTime(day time.Weekday, start, end Clock) (MeetingTime, error) {
	if start >= end {
		return MeetingTime{}, fmt.Errorf("%w: %s %s-%s", ErrInvalidMeetingTime, DayLabel(day), start, end)
	}
	return MeetingTime{Day: day, Start: start, End: end}, nil
}

// Equal compares against any value; anything that is not a MeetingTime
// is simply unequal.
func (m MeetingTime) Equal(other any) bool {
	switch o := other.(type) {
	case MeetingTime:
		return m == o
	case *MeetingTime:
		return o != nil && m == *o
	}
	return false
}

// Overlaps reports a strict intersection of two slots on the same day.
// Slots that only touch (one ends at 10:00, the other starts at 10:00)
// do not overlap.
func (m MeetingTime) Overlaps(o MeetingTime) bool {
	return m.Day == o.Day && m.Start < o.End && o.Start < m.End
}

// Duration is the length of the slot.
func (m MeetingTime) Duration() time.Duration {
	return time.Duration(m.End-m.Start) * time.Minute
}

// DayLabel is the registrar abbreviation of the slot's day.
func (m MeetingTime) DayLabel() string { return DayLabel(m.Day) }

func (m MeetingTime) String() string {
	return fmt.Sprintf("%s %s-%s", m.DayLabel(), m.Start, m.End)
}

type meetingJSON struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// MarshalJSON renders the display form used by the API.
func (m MeetingTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(meetingJSON{Day: m.DayLabel(), Start: m.Start.String(), End: m.End.String()})
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (m *MeetingTime) UnmarshalJSON(b []byte) error {
	var raw meetingJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	days, err := ParseDays(raw.Day)
	if err != nil || len(days) != 1 {
		return fmt.Errorf("%w: day %q", ErrInvalidMeetingTime, raw.Day)
	}
	start, err := ParseClock(raw.Start)
	if err != nil {
		return err
	}
	end, err := ParseClock(raw.End)
	if err != nil {
		return err
	}
	mt, err := NewMeetingTime(days[0], start, end)
	if err != nil {
		return err
	}
	*m = mt
	return nil
}
