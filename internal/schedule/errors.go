package schedule

import (
	"fmt"

	"github.com/iliyamo/schedule-builder/internal/model"
)

// ConflictError is returned by AddSection when the new section would
// double-book a slot already taken by another course.
type ConflictError struct {
	SectionID     string            // section being added
	ConflictsWith string            // active section it collides with
	Meeting       model.MeetingTime // slot of the new section
	Other         model.MeetingTime // slot of the active section
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule: %s conflicts with %s (%s overlaps %s)", e.SectionID, e.ConflictsWith, e.Meeting, e.Other)
}
