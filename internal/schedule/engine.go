// Package schedule holds one user's selection of course sections and
// enforces the no-double-booking rule.  An Engine is a per-session value
// and is not safe for concurrent writers.
package schedule

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/iliyamo/schedule-builder/internal/model"
)

// Entry is one course in the schedule with its chosen section.
type Entry struct {
	Course  model.Course  `json:"course"`
	Section model.Section `json:"section"`
	Color   string        `json:"color"`
}

// Engine is a student's schedule: at most one active section per course,
// the warnings those sections raised and a color per course.
type Engine struct {
	entries  map[string]*Entry
	warnings []Warning
	palette  []string
	counter  int
	log      *log.Logger
}

// New returns an empty schedule.
func New(opts ...Option) *Engine {
	e := &Engine{
		entries: make(map[string]*Entry),
		palette: DefaultPalette,
		log:     log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddSection makes section the active section of course.
//
// Re-adding the active section is a no-op.  A different section of a
// course already in the schedule replaces it and keeps the course color.
// If any meeting overlaps a meeting of another course's active section
// the schedule is left unchanged and a *ConflictError is returned.  A
// section with no open seats is still added, with a NoOpenSeats warning.
func (e *Engine) AddSection(course model.Course, section model.Section) error {
	if section.CourseCode != course.Code {
		return fmt.Errorf("schedule: %w: %s is for %s, not %s", model.ErrCourseMismatch, section.ID, section.CourseCode, course.Code)
	}
	current, exists := e.entries[course.Code]
	if exists && current.Section.ID == section.ID {
		return nil
	}
	if err := e.conflict(course.Code, section); err != nil {
		return err
	}

	if exists {
		e.dropWarnings(current.Section.ID)
		current.Course = course
		current.Section = section
	} else {
		e.entries[course.Code] = &Entry{Course: course, Section: section, Color: e.nextColor()}
	}
	if section.IsFull() {
		e.warn(Warning{Kind: NoOpenSeats, CourseCode: course.Code, SectionID: section.ID})
	}
	return nil
}

// conflict checks section against every other course in code order so
// the reported conflict is deterministic.
func (e *Engine) conflict(courseCode string, section model.Section) error {
	for _, code := range e.codes() {
		if code == courseCode {
			continue
		}
		other := e.entries[code].Section
		for _, m := range section.Meetings {
			for _, o := range other.Meetings {
				if m.Overlaps(o) {
					return &ConflictError{SectionID: section.ID, ConflictsWith: other.ID, Meeting: m, Other: o}
				}
			}
		}
	}
	return nil
}

func (e *Engine) nextColor() string {
	c := e.palette[e.counter%len(e.palette)]
	e.counter++
	return c
}

func (e *Engine) warn(w Warning) {
	if slices.Contains(e.warnings, w) {
		return
	}
	e.warnings = append(e.warnings, w)
}

func (e *Engine) dropWarnings(sectionID string) {
	e.warnings = slices.DeleteFunc(e.warnings, func(w Warning) bool { return w.SectionID == sectionID })
}

// RemoveSection drops the course's active section and its warnings.
// Removing a course that is not in the schedule does nothing.
func (e *Engine) RemoveSection(courseCode string) {
	entry, ok := e.entries[courseCode]
	if !ok {
		return
	}
	e.dropWarnings(entry.Section.ID)
	delete(e.entries, courseCode)
}

// RemoveAll empties the schedule.  The color counter keeps running so a
// rebuilt schedule does not reuse colors in the same order.
func (e *Engine) RemoveAll() {
	clear(e.entries)
	e.warnings = nil
}

// AverageGPA is the mean GPA, in their own course, of every instructor
// of every active section, skipping instructors without grade data.  It
// is 0.0 when nothing is known.
func (e *Engine) AverageGPA() float64 {
	var sum float64
	var n int
	for _, code := range e.codes() {
		entry := e.entries[code]
		for _, name := range entry.Section.Instructors {
			if g := entry.Course.GPAFor(name); g.Valid {
				sum += g.Value
				n++
			}
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

// Color is the display color of a course, or NoColor when the course is
// not in the schedule.
func (e *Engine) Color(courseCode string) string {
	if entry, ok := e.entries[courseCode]; ok {
		return entry.Color
	}
	return NoColor
}

// TotalCredits sums the credits of every course in the schedule.
func (e *Engine) TotalCredits() float64 {
	var total float64
	for _, entry := range e.entries {
		total += entry.Course.Credits
	}
	return total
}

// Entries returns copies of the schedule entries ordered by course code.
func (e *Engine) Entries() []Entry {
	out := make([]Entry, 0, len(e.entries))
	for _, code := range e.codes() {
		out = append(out, *e.entries[code])
	}
	return out
}

// Warnings returns the current warnings in the order they were raised.
func (e *Engine) Warnings() []Warning {
	return slices.Clone(e.warnings)
}

// Len is the number of courses in the schedule.
func (e *Engine) Len() int { return len(e.entries) }

// Has reports whether the course is in the schedule.
func (e *Engine) Has(courseCode string) bool {
	_, ok := e.entries[courseCode]
	return ok
}

// Section returns the active section of a course.
func (e *Engine) Section(courseCode string) (model.Section, bool) {
	entry, ok := e.entries[courseCode]
	if !ok {
		return model.Section{}, false
	}
	return entry.Section, true
}

// DaySlot is one meeting on a given day of the week grid.
type DaySlot struct {
	CourseCode string            `json:"course_code"`
	SectionID  string            `json:"section_id"`
	Meeting    model.MeetingTime `json:"meeting"`
	Color      string            `json:"color"`
}

// Day lists the meetings held on d, earliest first.
func (e *Engine) Day(d time.Weekday) []DaySlot {
	var out []DaySlot
	for _, code := range e.codes() {
		entry := e.entries[code]
		for _, m := range entry.Section.Meetings {
			if m.Day == d {
				out = append(out, DaySlot{CourseCode: code, SectionID: entry.Section.ID, Meeting: m, Color: entry.Color})
			}
		}
	}
	slices.SortStableFunc(out, func(a, b DaySlot) int {
		if a.Meeting.Start != b.Meeting.Start {
			return int(a.Meeting.Start - b.Meeting.Start)
		}
		return strings.Compare(a.CourseCode, b.CourseCode)
	})
	return out
}

func (e *Engine) codes() []string {
	out := make([]string, 0, len(e.entries))
	for code := range e.entries {
		out = append(out, code)
	}
	slices.Sort(out)
	return out
}
