// Package umdio adapts records from the registrar provider: live sections
// with integer seat counts, structured meeting objects, general-education
// tags and pre-aggregated grade averages.
package umdio

import (
	"strings"

	"github.com/iliyamo/schedule-builder/internal/model"
	"github.com/iliyamo/schedule-builder/internal/provider"
)

// Name is the provider name used in errors.
const Name = "umdio"

// Adapter implements provider.Adapter for the registrar provider.
type Adapter struct{}

var _ provider.Adapter = Adapter{}

// Name implements provider.Adapter.
func (Adapter) Name() string { return Name }

// CourseHead reads course_id and name (required), credits (string or
// number, absent -> 0), dept_id (absent -> code prefix), gen_ed (nested
// list, flattened) and description.
func (Adapter) CourseHead(r provider.Record) (model.Course, error) {
	code, ok, err := provider.String(r, "course_id")
	if err != nil {
		return model.Course{}, provider.Malformed(Name, "", "course_id", err)
	}
	if !ok || code == "" {
		name, _, _ := provider.String(r, "name")
		return model.Course{}, provider.Missing(Name, name, "course_id")
	}
	title, ok, err := provider.String(r, "name")
	if err != nil {
		return model.Course{}, provider.Malformed(Name, code, "name", err)
	}
	if !ok {
		return model.Course{}, provider.Missing(Name, code, "name")
	}
	credits, _, err := provider.Float(r, "credits")
	if err != nil {
		return model.Course{}, provider.Malformed(Name, code, "credits", err)
	}
	course, err := model.NewCourse(code, title, credits)
	if err != nil {
		return model.Course{}, provider.Malformed(Name, code, "course_id", err)
	}
	if dept, ok, _ := provider.String(r, "dept_id"); ok && dept != "" {
		course.DepartmentID = strings.ToUpper(dept)
	}
	course.GenEds, _ = provider.Strings(r, "gen_ed")
	course.Description, _, _ = provider.String(r, "description")
	return course, nil
}

// Section reads section_id, seats and open_seats (required).  number
// defaults to the suffix of section_id.  Each meeting object needs days,
// start_time and end_time; a meeting missing or garbling any of them is
// dropped while the rest of the section survives.
func (Adapter) Section(courseCode string, r provider.Record) (model.Section, error) {
	id, ok, err := provider.String(r, "section_id")
	if err != nil {
		return model.Section{}, provider.Malformed(Name, courseCode, "section_id", err)
	}
	if !ok || id == "" {
		return model.Section{}, provider.Missing(Name, courseCode, "section_id")
	}
	total, ok, err := provider.Int(r, "seats")
	if err != nil {
		return model.Section{}, provider.Malformed(Name, id, "seats", err)
	}
	if !ok {
		return model.Section{}, provider.Missing(Name, id, "seats")
	}
	open, ok, err := provider.Int(r, "open_seats")
	if err != nil {
		return model.Section{}, provider.Malformed(Name, id, "open_seats", err)
	}
	if !ok {
		return model.Section{}, provider.Missing(Name, id, "open_seats")
	}
	if open < 0 {
		open = 0
	}
	number, _, _ := provider.String(r, "number")
	if number == "" || number == "0" {
		number = model.SectionNumber(id)
	}
	var meetings []model.MeetingTime
	objs, _ := provider.Records(r, "meetings")
	for _, m := range objs {
		meetings = append(meetings, meetingSlots(m)...)
	}
	instructors, _ := provider.Strings(r, "instructors")
	return model.Section{
		ID:          id,
		CourseCode:  courseCode,
		Number:      number,
		Meetings:    provider.Dedupe(meetings),
		TotalSeats:  total,
		OpenSeats:   open,
		Instructors: instructors,
	}, nil
}

func meetingSlots(m provider.Record) []model.MeetingTime {
	days, _, _ := provider.String(m, "days")
	startText, _, _ := provider.String(m, "start_time")
	endText, _, _ := provider.String(m, "end_time")
	if days == "" || startText == "" || endText == "" {
		return nil
	}
	start, err := model.ParseClock(startText)
	if err != nil {
		return nil
	}
	end, err := model.ParseClock(endText)
	if err != nil {
		return nil
	}
	slots, err := provider.ExpandDays(days, start, end)
	if err != nil {
		return nil
	}
	return slots
}

// Professor reads name (required) and courses.  This provider publishes
// no ratings, so the rating is always unknown.
func (Adapter) Professor(r provider.Record) (model.Professor, error) {
	name, ok, err := provider.String(r, "name")
	if err != nil {
		return model.Professor{}, provider.Malformed(Name, "", "name", err)
	}
	if !ok || strings.TrimSpace(name) == "" {
		return model.Professor{}, provider.Missing(Name, "", "name")
	}
	courses, _ := provider.Strings(r, "courses")
	return model.Professor{
		Name:      name,
		Slug:      model.Slugify(name),
		Courses:   courses,
		CourseGPA: map[string]model.Score{},
	}, nil
}

// Grade reads course and professor (required), average_gpa (absent ->
// unknown) and graded (absent -> 1 when the average is known).
func (Adapter) Grade(r provider.Record) (model.GradeSummary, error) {
	course, ok, err := provider.String(r, "course")
	if err != nil {
		return model.GradeSummary{}, provider.Malformed(Name, "", "course", err)
	}
	if !ok || course == "" {
		return model.GradeSummary{}, provider.Missing(Name, "", "course")
	}
	prof, ok, err := provider.String(r, "professor")
	if err != nil {
		return model.GradeSummary{}, provider.Malformed(Name, course, "professor", err)
	}
	if !ok || prof == "" {
		return model.GradeSummary{}, provider.Missing(Name, course, "professor")
	}
	out := model.GradeSummary{Course: course, Professor: prof}
	if canon, err := model.CanonicalCourseCode(course); err == nil {
		out.Course = canon
	}
	gpa, ok, err := provider.Float(r, "average_gpa")
	if err != nil {
		return model.GradeSummary{}, provider.Malformed(Name, course+"/"+prof, "average_gpa", err)
	}
	if !ok {
		return out, nil
	}
	out.GPA = model.Known(gpa)
	out.Graded = 1
	if n, ok, err := provider.Int(r, "graded"); err == nil && ok {
		out.Graded = n
	}
	return out, nil
}
