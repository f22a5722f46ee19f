package planetterp

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/iliyamo/schedule-builder/internal/model"
	"github.com/iliyamo/schedule-builder/internal/provider"
)

func decode(t *testing.T, s string) provider.Record {
	t.Helper()
	var r provider.Record
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return r
}

func TestCourseHead(t *testing.T) {
	r := decode(t, `{
		"department": "MATH",
		"course_number": "140",
		"title": "Calculus I",
		"credits": 3,
		"professors": [["Jon Snow", "Tyrion Lannister"]],
		"average_gpa": 3.17244
	}`)
	c, err := Adapter{}.CourseHead(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Code != "MATH140" || c.Title != "Calculus I" || c.Credits != 3 {
		t.Errorf("unexpected course %+v", c)
	}
	if !c.AverageGPA.Valid || math.Abs(c.AverageGPA.Value-3.17244) > 1e-9 {
		t.Errorf("average gpa = %v", c.AverageGPA)
	}
	if _, ok := c.ProfessorRatings["Tyrion Lannister"]; !ok {
		t.Errorf("professors not carried over: %v", c.ProfessorRatings)
	}
}

func TestCourseHead_OptionalFieldsMissing(t *testing.T) {
	c, err := Adapter{}.CourseHead(decode(t, `{"department":"CMSC","course_number":"131","title":"OOP I"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Credits != 0 || c.AverageGPA.Valid || len(c.GenEds) != 0 {
		t.Errorf("defaults not applied: %+v", c)
	}
}

func TestCourseHead_MissingTitle(t *testing.T) {
	_, err := Adapter{}.CourseHead(decode(t, `{"department":"CMSC","course_number":"131"}`))
	var ae *provider.AdaptationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AdaptationError, got %v", err)
	}
	if ae.Field != "title" || ae.Record != "CMSC131" {
		t.Errorf("unexpected error detail %+v", ae)
	}
}

func TestSection_FreeTextMeetings(t *testing.T) {
	r := decode(t, `{
		"section_id": "CMSC250-0101",
		"seats": "10/30",
		"meetings": ["MW 4:00-4:50pm", "TuTh 2:00-3:15pm", "MW 4:00-4:50pm"],
		"instructors": ["Jon Snow"]
	}`)
	s, err := Adapter{}.Section("CMSC250", r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OpenSeats != 10 || s.TotalSeats != 30 {
		t.Errorf("seats = %d/%d", s.OpenSeats, s.TotalSeats)
	}
	if s.Number != "0101" || s.CourseCode != "CMSC250" {
		t.Errorf("identity = %q %q", s.Number, s.CourseCode)
	}
	if len(s.Meetings) != 4 {
		t.Fatalf("expected 4 deduplicated meetings, got %v", s.Meetings)
	}
	first := s.Meetings[0]
	if first.Day != time.Monday || first.Start.String() != "4:00pm" || first.End.String() != "4:50pm" {
		t.Errorf("first meeting = %v", first)
	}
}

func TestSection_UnparsableMeetingKeepsSection(t *testing.T) {
	r := decode(t, `{"section_id":"CMSC250-0102","seats":"0/30","meetings":["MWF 9:00-9:50am","TBA"]}`)
	s, err := Adapter{}.Section("CMSC250", r)
	if err != nil {
		t.Fatalf("section must survive bad meeting text: %v", err)
	}
	if len(s.Meetings) != 0 {
		t.Errorf("expected empty meeting list, got %v", s.Meetings)
	}
	if !s.IsFull() {
		t.Error("0 open seats must read as full")
	}
}

func TestSection_MissingSeats(t *testing.T) {
	_, err := Adapter{}.Section("CMSC250", decode(t, `{"section_id":"CMSC250-0101"}`))
	var ae *provider.AdaptationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AdaptationError, got %v", err)
	}
	if ae.Field != "seats" || ae.Record != "CMSC250-0101" {
		t.Errorf("unexpected error detail %+v", ae)
	}
}

func TestSection_MalformedSeats(t *testing.T) {
	for _, seats := range []string{`"30"`, `"a/b"`, `"31/30"`, `12`} {
		_, err := Adapter{}.Section("CMSC250", decode(t, `{"section_id":"CMSC250-0101","seats":`+seats+`}`))
		var ae *provider.AdaptationError
		if !errors.As(err, &ae) || ae.Field != "seats" {
			t.Errorf("seats %s: expected seats AdaptationError, got %v", seats, err)
		}
	}
}

func TestParseMeeting(t *testing.T) {
	cases := []struct {
		in         string
		days       int
		start, end string
	}{
		{"MWF 9:00-9:50am", 3, "9:00am", "9:50am"},
		{"TuTh 11:00-12:15pm", 2, "11:00am", "12:15pm"},
		{"TuTh 12:30-1:45pm", 2, "12:30pm", "1:45pm"},
		{"W 6-8:40pm", 1, "6:00pm", "8:40pm"},
		{"M 10:00am-12:30pm", 1, "10:00am", "12:30pm"},
		{"F 13:00-14:15", 1, "1:00pm", "2:15pm"},
		{"MSa 9:00-9:50am", 1, "9:00am", "9:50am"},
	}
	for _, tc := range cases {
		got, err := ParseMeeting(tc.in)
		if err != nil {
			t.Errorf("ParseMeeting(%q): %v", tc.in, err)
			continue
		}
		if len(got) != tc.days {
			t.Errorf("ParseMeeting(%q) gave %d slots, want %d", tc.in, len(got), tc.days)
			continue
		}
		if got[0].Start.String() != tc.start || got[0].End.String() != tc.end {
			t.Errorf("ParseMeeting(%q) = %v, want %s-%s", tc.in, got[0], tc.start, tc.end)
		}
	}
	for _, bad := range []string{"", "TBA", "MWF", "MWF 9:00am-9:50", "XY 9:00-9:50am", "M 10:00-9:00am"} {
		if _, err := ParseMeeting(bad); err == nil {
			t.Errorf("ParseMeeting(%q) expected error", bad)
		}
	}
}

func TestProfessor_OptionalRating(t *testing.T) {
	p, err := Adapter{}.Professor(decode(t, `{"name":"Jon Snow","type":"professor","courses":["MATH140"]}`))
	if err != nil {
		t.Fatalf("missing optional rating must not fail: %v", err)
	}
	if p.AverageRating.Valid {
		t.Errorf("rating must be unknown, got %v", p.AverageRating)
	}
	if p.Slug != "jon_snow" {
		t.Errorf("slug defaults to slugified name, got %q", p.Slug)
	}

	p, err = Adapter{}.Professor(decode(t, `{"name":"Jon Snow","slug":"snow","average_rating":4.125}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.AverageRating.Valid || p.AverageRating.Value != 4.125 || p.Slug != "snow" {
		t.Errorf("unexpected professor %+v", p)
	}
}

func TestProfessor_Reviews(t *testing.T) {
	p, err := Adapter{}.Professor(decode(t, `{
		"name": "Jon Snow",
		"reviews": [
			{"professor": "Jon Snow", "course": "math140", "review": "Knows nothing.", "rating": 2, "expected_grade": "B", "created": "2020-01-01T00:00:00"},
			{"professor": "Jon Snow", "course": "MATH140", "review": "", "rating": 5},
			{"review": "Fair grader."},
			"not a review"
		]
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Reviews) != 2 {
		t.Fatalf("want 2 reviews, got %+v", p.Reviews)
	}
	first := p.Reviews[0]
	if first.Course != "MATH140" || first.Text != "Knows nothing." || first.ExpectedGrade != "B" ||
		!first.Rating.Valid || first.Rating.Value != 2 {
		t.Errorf("unexpected review %+v", first)
	}
	if second := p.Reviews[1]; second.Course != "" || second.Rating.Valid {
		t.Errorf("optional fields must stay empty, got %+v", second)
	}
	raw, err := json.Marshal(p.Reviews[0])
	if err != nil {
		t.Fatal(err)
	}
	var keys map[string]any
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"professor", "created"} {
		if _, ok := keys[k]; ok {
			t.Errorf("review must not carry %q: %s", k, raw)
		}
	}
}

func TestProfessor_MissingName(t *testing.T) {
	_, err := Adapter{}.Professor(decode(t, `{"slug":"snow"}`))
	var ae *provider.AdaptationError
	if !errors.As(err, &ae) || ae.Field != "name" || ae.Record != "snow" {
		t.Fatalf("expected name AdaptationError for snow, got %v", err)
	}
}

func TestGrade_Histogram(t *testing.T) {
	r := decode(t, `{
		"course": "MATH140", "professor": "Jon Snow", "semester": "202001", "section": "0101",
		"A+": 1, "A": 1, "A-": 1, "B+": 1, "B": 1, "B-": 1, "C+": 1, "C": 1, "C-": 1,
		"D+": 1, "D": 1, "D-": 1, "F": 1, "W": 1, "Other": 1
	}`)
	g, err := Adapter{}.Grade(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 4+4+3.7+3.3+3+2.7+2.3+2+1.7+1.3+1+0.7 = 29.7 over 14 graded
	want := 29.7 / 14
	if !g.GPA.Valid || math.Abs(g.GPA.Value-want) > 1e-9 || g.Graded != 14 {
		t.Errorf("gpa = %v over %d, want %v over 14", g.GPA, g.Graded, want)
	}
}

func TestGrade_NoGradesIsNoData(t *testing.T) {
	g, err := Adapter{}.Grade(decode(t, `{"course":"MATH140","professor":"Jon Snow","Other":3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.GPA.Valid || g.Graded != 0 {
		t.Errorf("zero observed grades must be unknown, got %v", g.GPA)
	}
}

func TestHistogramGPA_Capped(t *testing.T) {
	gpa, n := HistogramGPA(map[string]int{"A+": 5})
	if gpa != model.Known(4.0) || n != 5 {
		t.Errorf("got %v over %d", gpa, n)
	}
}
