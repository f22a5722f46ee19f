// Package planetterp adapts records from the ratings provider: course
// descriptions, professor ratings, free-text meeting times, "open/total"
// seat strings and letter-grade histograms.
package planetterp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/schedule-builder/internal/model"
	"github.com/iliyamo/schedule-builder/internal/provider"
)

// Name is the provider name used in errors.
const Name = "planetterp"

// Adapter implements provider.Adapter for the ratings provider.
type Adapter struct{}

var _ provider.Adapter = Adapter{}

// Name implements provider.Adapter.
func (Adapter) Name() string { return Name }

// CourseHead reads department + course_number (required), title
// (required), credits (absent -> 0), average_gpa (absent -> unknown),
// description and gen_eds (absent -> empty).
func (Adapter) CourseHead(r provider.Record) (model.Course, error) {
	id := courseRecordID(r)
	dept, ok, err := provider.String(r, "department")
	if err != nil {
		return model.Course{}, provider.Malformed(Name, id, "department", err)
	}
	if !ok || dept == "" {
		return model.Course{}, provider.Missing(Name, id, "department")
	}
	number, ok, err := provider.String(r, "course_number")
	if err != nil {
		return model.Course{}, provider.Malformed(Name, id, "course_number", err)
	}
	if !ok || number == "" {
		return model.Course{}, provider.Missing(Name, id, "course_number")
	}
	title, ok, err := provider.String(r, "title")
	if err != nil {
		return model.Course{}, provider.Malformed(Name, id, "title", err)
	}
	if !ok {
		return model.Course{}, provider.Missing(Name, id, "title")
	}
	credits, _, err := provider.Float(r, "credits")
	if err != nil {
		return model.Course{}, provider.Malformed(Name, id, "credits", err)
	}
	course, err := model.NewCourse(dept+number, title, credits)
	if err != nil {
		return model.Course{}, provider.Malformed(Name, id, "course_number", err)
	}
	if gpa, ok, err := provider.Float(r, "average_gpa"); err == nil && ok {
		course.AverageGPA = model.Known(gpa)
	}
	course.Description, _, _ = provider.String(r, "description")
	course.GenEds, _ = provider.Strings(r, "gen_eds")
	// professors arrive as [["A","B"]]; they have no rating yet
	if names, ok := provider.Strings(r, "professors"); ok {
		for _, n := range names {
			course.ProfessorRatings[n] = model.Unknown
		}
	}
	return course, nil
}

// Section reads section_id and seats ("open/total") as required fields.
// meetings is a list of free-text strings such as "MWF 9:00-9:50am"; if
// any of them cannot be parsed the section keeps an empty meeting list
// rather than failing.  instructors defaults to none.
func (Adapter) Section(courseCode string, r provider.Record) (model.Section, error) {
	id, ok, err := provider.String(r, "section_id")
	if err != nil {
		return model.Section{}, provider.Malformed(Name, courseCode, "section_id", err)
	}
	if !ok || id == "" {
		return model.Section{}, provider.Missing(Name, courseCode, "section_id")
	}
	seats, ok, err := provider.String(r, "seats")
	if err != nil {
		return model.Section{}, provider.Malformed(Name, id, "seats", err)
	}
	if !ok {
		return model.Section{}, provider.Missing(Name, id, "seats")
	}
	open, total, err := ParseSeats(seats)
	if err != nil {
		return model.Section{}, provider.Malformed(Name, id, "seats", err)
	}
	var meetings []model.MeetingTime
	if texts, ok := provider.Strings(r, "meetings"); ok {
		meetings = parseAll(texts)
	}
	instructors, _ := provider.Strings(r, "instructors")
	return model.Section{
		ID:          id,
		CourseCode:  courseCode,
		Number:      model.SectionNumber(id),
		Meetings:    meetings,
		TotalSeats:  total,
		OpenSeats:   open,
		Instructors: instructors,
	}, nil
}

func parseAll(texts []string) []model.MeetingTime {
	var out []model.MeetingTime
	for _, t := range texts {
		ms, err := ParseMeeting(t)
		if err != nil {
			return nil
		}
		out = append(out, ms...)
	}
	return provider.Dedupe(out)
}

// Professor reads name (required), slug (absent -> slug of name), type,
// average_rating (absent -> unknown), courses and reviews.  Reviews
// without text are dropped.
func (Adapter) Professor(r provider.Record) (model.Professor, error) {
	name, ok, err := provider.String(r, "name")
	if err != nil {
		return model.Professor{}, provider.Malformed(Name, "", "name", err)
	}
	if !ok || strings.TrimSpace(name) == "" {
		slug, _, _ := provider.String(r, "slug")
		return model.Professor{}, provider.Missing(Name, slug, "name")
	}
	p := model.Professor{Name: name, CourseGPA: map[string]model.Score{}}
	p.Slug, _, _ = provider.String(r, "slug")
	if p.Slug == "" {
		p.Slug = model.Slugify(name)
	}
	p.Type, _, _ = provider.String(r, "type")
	if rating, ok, err := provider.Float(r, "average_rating"); err != nil {
		return model.Professor{}, provider.Malformed(Name, name, "average_rating", err)
	} else if ok {
		p.AverageRating = model.Known(rating)
	}
	p.Courses, _ = provider.Strings(r, "courses")
	reviews, _ := provider.Records(r, "reviews")
	for _, rv := range reviews {
		if review, ok := adaptReview(rv); ok {
			p.Reviews = append(p.Reviews, review)
		}
	}
	return p, nil
}

func adaptReview(r provider.Record) (model.Review, bool) {
	text, _, err := provider.String(r, "review")
	if err != nil || strings.TrimSpace(text) == "" {
		return model.Review{}, false
	}
	out := model.Review{Text: text}
	if course, _, err := provider.String(r, "course"); err == nil {
		if canon, err := model.CanonicalCourseCode(course); err == nil {
			out.Course = canon
		}
	}
	if rating, ok, err := provider.Float(r, "rating"); err == nil && ok {
		out.Rating = model.Known(rating)
	}
	out.ExpectedGrade, _, _ = provider.String(r, "expected_grade")
	return out, true
}

// Grade reads course and professor (required) and a letter histogram.
// Letters missing from the record count as zero students.
func (Adapter) Grade(r provider.Record) (model.GradeSummary, error) {
	id := gradeRecordID(r)
	course, ok, err := provider.String(r, "course")
	if err != nil {
		return model.GradeSummary{}, provider.Malformed(Name, id, "course", err)
	}
	if !ok || course == "" {
		return model.GradeSummary{}, provider.Missing(Name, id, "course")
	}
	prof, ok, err := provider.String(r, "professor")
	if err != nil {
		return model.GradeSummary{}, provider.Malformed(Name, id, "professor", err)
	}
	if !ok || prof == "" {
		return model.GradeSummary{}, provider.Missing(Name, id, "professor")
	}
	hist := make(map[string]int, len(gradePoints))
	for letter := range gradePoints {
		n, _, err := provider.Int(r, letter)
		if err != nil {
			return model.GradeSummary{}, provider.Malformed(Name, id, letter, err)
		}
		if n < 0 {
			return model.GradeSummary{}, provider.Malformed(Name, id, letter, errors.New("negative count"))
		}
		hist[letter] = n
	}
	gpa, graded := HistogramGPA(hist)
	if canon, err := model.CanonicalCourseCode(course); err == nil {
		course = canon
	}
	return model.GradeSummary{Course: course, Professor: prof, GPA: gpa, Graded: graded}, nil
}

// ParseSeats reads the "open/total" form, e.g. "10/30".
func ParseSeats(s string) (open, total int, err error) {
	a, b, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return 0, 0, fmt.Errorf("want open/total, got %q", s)
	}
	open, err = strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("open seats %q: %w", a, err)
	}
	total, err = strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("total seats %q: %w", b, err)
	}
	if open < 0 || total < 0 || open > total {
		return 0, 0, fmt.Errorf("inconsistent seats %q", s)
	}
	return open, total, nil
}

func courseRecordID(r provider.Record) string {
	dept, _, _ := provider.String(r, "department")
	num, _, _ := provider.String(r, "course_number")
	if dept+num != "" {
		return dept + num
	}
	name, _, _ := provider.String(r, "name")
	return name
}

func gradeRecordID(r provider.Record) string {
	parts := make([]string, 0, 4)
	for _, k := range []string{"course", "section", "professor", "semester"} {
		if v, ok, _ := provider.String(r, k); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "/")
}
