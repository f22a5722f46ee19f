package schedule

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ExportICS renders the schedule as an iCalendar feed.  Every meeting
// becomes a weekly event whose first occurrence is the first matching
// weekday on or after start, repeated for weeks weeks.  Clock times are
// read in start's location.
func (e *Engine) ExportICS(start time.Time, weeks int) string {
	if weeks < 1 {
		weeks = 1
	}
	loc := start.Location()
	day0 := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	cal := ics.NewCalendarFor("schedule-builder")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName("My Schedule")

	for _, entry := range e.Entries() {
		summary := entry.Course.Code
		if entry.Course.Title != "" {
			summary += " " + entry.Course.Title
		}
		for _, m := range entry.Section.Meetings {
			offset := (int(m.Day) - int(day0.Weekday()) + 7) % 7
			date := day0.AddDate(0, 0, offset)
			begin := time.Date(date.Year(), date.Month(), date.Day(), m.Start.Hour(), m.Start.Minute(), 0, 0, loc)
			end := begin.Add(m.Duration())

			ev := cal.AddEvent(fmt.Sprintf("%s-%s-%d@schedule-builder", entry.Section.ID, m.DayLabel(), int(m.Start)))
			ev.SetDtStampTime(start)
			ev.SetStartAt(begin)
			ev.SetEndAt(end)
			ev.SetSummary(summary)
			ev.SetDescription(fmt.Sprintf("Section %s. %s", entry.Section.Number, strings.Join(entry.Section.Instructors, ", ")))
			ev.SetColor(entry.Color)
			ev.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", weeks))
		}
	}
	return cal.Serialize()
}
