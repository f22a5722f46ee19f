package planetterp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iliyamo/schedule-builder/internal/model"
	"github.com/iliyamo/schedule-builder/internal/provider"
)

// "MWF 9:00-9:50am", "TuTh 11:00am-12:15pm", "W 6-8:40pm"
var meetingPattern = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{1,2}(?::\d{2})?)\s*((?i:am|pm))?\s*-\s*(\d{1,2}(?::\d{2})?)\s*((?i:am|pm))?$`)

// ParseMeeting parses one free-text meeting into a slot per weekday.
//
// When only the end carries am/pm the start takes the same half of the
// day, unless that would put it after the end ("11:00-12:15pm"), in
// which case it is read as morning.  Without any am/pm both times are
// read on the 24-hour clock.
func ParseMeeting(text string) ([]model.MeetingTime, error) {
	m := meetingPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidMeetingTime, text)
	}
	days, startText, startMer, endText, endMer := m[1], m[2], strings.ToLower(m[3]), m[4], strings.ToLower(m[5])

	var start, end model.Clock
	var err error
	switch {
	case startMer == "" && endMer == "":
		if start, err = model.ParseClock(startText); err != nil {
			return nil, err
		}
		if end, err = model.ParseClock(endText); err != nil {
			return nil, err
		}
	case endMer == "":
		return nil, fmt.Errorf("%w: end time without am/pm in %q", model.ErrInvalidMeetingTime, text)
	default:
		if end, err = model.ParseClock(endText + endMer); err != nil {
			return nil, err
		}
		mer := startMer
		if mer == "" {
			mer = endMer
		}
		if start, err = model.ParseClock(startText + mer); err != nil {
			return nil, err
		}
		if startMer == "" && start >= end && mer == "pm" {
			if start, err = model.ParseClock(startText + "am"); err != nil {
				return nil, err
			}
		}
	}
	return provider.ExpandDays(days, start, end)
}
