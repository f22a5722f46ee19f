package model

import (
	"strings"
	"unicode"
)

// Professor is an instructor as described by the ratings provider.
//
// Fields:
//  Name          – display name ("Jon Snow").
//  Slug          – canonical lookup form, see Slugify.
//  Type          – instructor type tag ("professor", "ta").
//  AverageRating – overall rating, unknown when never reviewed.
//  Courses       – course codes the professor has taught.
//  CourseGPA     – course code -> average GPA of students in that course.
//  Reviews       – student reviews, only filled on a single-professor lookup.
type Professor struct {
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Type          string           `json:"type,omitempty"`
	AverageRating Score            `json:"average_rating"`
	Courses       []string         `json:"courses,omitempty"`
	CourseGPA     map[string]Score `json:"course_gpa,omitempty"`
	Reviews       []Review         `json:"reviews,omitempty"`
}

// Review is one student review of a professor.  Reviewer identity and
// timestamps are never carried.
type Review struct {
	Course        string `json:"course,omitempty"`
	Text          string `json:"review"`
	Rating        Score  `json:"rating"`
	ExpectedGrade string `json:"expected_grade,omitempty"`
}

// Slugify lower-cases a name and joins its alphanumeric runs with "_",
// so "Jon  Snow", "jon snow" and "JON-SNOW" all become "jon_snow".
func Slugify(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "_")
}

// GPAIn returns the professor's average GPA in a course.
func (p Professor) GPAIn(courseCode string) Score {
	return p.CourseGPA[courseCode]
}
