package schedule

import "fmt"

// WarningKind tags a ScheduleWarning.
type WarningKind string

// NoOpenSeats marks a section that can only be waitlisted.
const NoOpenSeats WarningKind = "no_open_seats"

// Warning is an advisory notice attached to the schedule.  Warnings never
// block an operation.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	CourseCode string      `json:"course_code"`
	SectionID  string      `json:"section_id"`
}

// Text is the user-facing message.
func (w Warning) Text() string {
	switch w.Kind {
	case NoOpenSeats:
		return fmt.Sprintf("%s has no open seats and must be waitlisted.", w.SectionID)
	}
	return fmt.Sprintf("%s: %s", w.SectionID, w.Kind)
}
