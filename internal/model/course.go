package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrCourseMismatch is returned when a section is attached to a course
// with a different code.
var ErrCourseMismatch = errors.New("section does not belong to course")

// ErrInvalidCourseCode is returned for codes that are not DEPTNNN[N].
var ErrInvalidCourseCode = errors.New("invalid course code")

var courseCodePattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{3}[A-Z]?$`)

// CanonicalCourseCode upper-cases and strips whitespace, then checks the
// four-letter department + three-digit number (+ optional suffix) form.
func CanonicalCourseCode(raw string) (string, error) {
	code := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if !courseCodePattern.MatchString(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCourseCode, raw)
	}
	return code, nil
}

// Course is the canonical course: descriptive metadata from one provider
// merged with live sections from the other.
//
// Fields:
//  Code             – canonical code ("CMSC131").
//  Title            – course title.
//  Credits          – credit count, may be fractional, never negative.
//  DepartmentID     – department prefix ("CMSC").
//  GenEds           – general-education tags satisfied.
//  Description      – catalog description (may be empty).
//  AverageGPA       – course-wide average GPA, unknown when unpublished.
//  Sections         – ordered sections, each with CourseCode == Code.
//  ProfessorRatings – professor name -> average rating.
//  ProfessorGPA     – professor name -> average GPA in this course.
type Course struct {
	Code             string           `json:"code"`
	Title            string           `json:"title"`
	Credits          float64          `json:"credits"`
	DepartmentID     string           `json:"department_id"`
	GenEds           []string         `json:"gen_eds,omitempty"`
	Description      string           `json:"description,omitempty"`
	AverageGPA       Score            `json:"average_gpa"`
	Sections         []Section        `json:"sections"`
	ProfessorRatings map[string]Score `json:"professor_ratings,omitempty"`
	ProfessorGPA     map[string]Score `json:"professor_gpa,omitempty"`
}

// NewCourse canonicalizes the code and rejects negative credits.
func NewCourse(code, title string, credits float64) (Course, error) {
	canon, err := CanonicalCourseCode(code)
	if err != nil {
		return Course{}, err
	}
	if credits < 0 {
		return Course{}, fmt.Errorf("course %s: negative credits %v", canon, credits)
	}
	return Course{
		Code:             canon,
		Title:            title,
		Credits:          credits,
		DepartmentID:     canon[:4],
		ProfessorRatings: map[string]Score{},
		ProfessorGPA:     map[string]Score{},
	}, nil
}

// AddSection appends a section after checking it belongs to the course.
// A section with the same id replaces the earlier one.
func (c *Course) AddSection(s Section) error {
	if s.CourseCode != c.Code {
		return fmt.Errorf("%w: %s is for %s, not %s", ErrCourseMismatch, s.ID, s.CourseCode, c.Code)
	}
	for i := range c.Sections {
		if c.Sections[i].ID == s.ID {
			c.Sections[i] = s
			return nil
		}
	}
	c.Sections = append(c.Sections, s)
	return nil
}

// Section finds a section by full id ("CMSC131-0101") or by number ("0101").
func (c Course) Section(key string) (Section, bool) {
	for _, s := range c.Sections {
		if s.ID == key || s.Number == key {
			return s, true
		}
	}
	return Section{}, false
}

// Rating returns the professor's average rating, unknown if absent.
func (c Course) Rating(professor string) Score {
	return c.ProfessorRatings[professor]
}

// GPAFor returns the professor's average GPA in this course.
func (c Course) GPAFor(professor string) Score {
	return c.ProfessorGPA[professor]
}

// SectionsByProfessor groups sections by instructor; co-taught sections
// appear under each of their instructors.
func (c Course) SectionsByProfessor() map[string][]Section {
	out := make(map[string][]Section)
	for _, s := range c.Sections {
		for _, name := range s.Instructors {
			out[name] = append(out[name], s)
		}
	}
	return out
}
