package model

import "slices"

// Section is one schedulable offering of a course.  Sections are built
// by a provider adapter and treated as immutable snapshots afterwards;
// only the open seat count may be refreshed, and that produces a copy.
//
// Fields:
//  ID          – provider-assigned id, unique within the course ("CMSC131-0101").
//  CourseCode  – canonical code of the parent course.
//  Number      – section number within the course ("0101").
//  Meetings    – weekly slots in upstream order, without duplicates.
//  TotalSeats  – capacity.
//  OpenSeats   – seats still available, never negative (0 means waitlist).
//  Instructors – instructor names as the registrar lists them.
type Section struct {
	ID          string        `json:"id"`
	CourseCode  string        `json:"course_code"`
	Number      string        `json:"number"`
	Meetings    []MeetingTime `json:"meetings"`
	TotalSeats  int           `json:"total_seats"`
	OpenSeats   int           `json:"open_seats"`
	Instructors []string      `json:"instructors"`
}

// IsFull reports a section with no open seats.
func (s Section) IsFull() bool { return s.OpenSeats <= 0 }

// Synchronous reports whether the section has at least one scheduled
// meeting; online asynchronous sections have none.
func (s Section) Synchronous() bool { return len(s.Meetings) > 0 }

// WithOpenSeats returns a copy carrying a refreshed seat count.
func (s Section) WithOpenSeats(n int) Section {
	if n < 0 {
		n = 0
	}
	out := s
	out.Meetings = slices.Clone(s.Meetings)
	out.Instructors = slices.Clone(s.Instructors)
	out.OpenSeats = n
	return out
}

// TaughtBy reports whether name is one of the section's instructors.
func (s Section) TaughtBy(name string) bool {
	return slices.Contains(s.Instructors, name)
}

// SectionNumber extracts the number part of an id of the form
// "CMSC131-0101".  Ids without a dash are returned unchanged.
func SectionNumber(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '-' {
			return id[i+1:]
		}
	}
	return id
}

// SectionCourseCode extracts the course part of a section id, or "" when
// the id has no dash.
func SectionCourseCode(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '-' {
			return id[:i]
		}
	}
	return ""
}
