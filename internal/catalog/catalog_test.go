package catalog

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/iliyamo/schedule-builder/internal/provider"
	"github.com/iliyamo/schedule-builder/internal/upstream"
)

type fixture struct {
	ratings   *upstream.Stub
	registrar *upstream.Stub
	cat       *Catalog
}

func q(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ratings: upstream.NewStub(), registrar: upstream.NewStub()}
	f.cat = New(f.ratings, f.registrar, Options{PageSize: 2, Logger: log.New(io.Discard, "", 0)})

	f.ratings.SetOne("/course", q("name", "CMSC131"), provider.Record{
		"department":    "CMSC",
		"course_number": "131",
		"title":         "Object-Oriented Programming I",
		"credits":       float64(4),
		"professors":    []any{[]any{"Nelson Padua-Perez", "Fawzi Emad"}},
	})
	f.registrar.SetMany("/courses/CMSC131/sections", nil, []provider.Record{
		{
			"section_id": "CMSC131-0101", "seats": float64(30), "open_seats": float64(5),
			"instructors": []any{"Nelson Padua-Perez"},
			"meetings":    []any{map[string]any{"days": "MWF", "start_time": "10:00am", "end_time": "10:50am"}},
		},
		{
			"section_id": "CMSC131-0201", "seats": float64(30), "open_seats": float64(0),
			"instructors": []any{"Fawzi Emad"},
			"meetings":    []any{map[string]any{"days": "TuTh", "start_time": "11:00am", "end_time": "12:15pm"}},
		},
		{"section_id": "CMSC131-0301"},
	})
	f.ratings.SetMany("/grades", q("course", "CMSC131"), []provider.Record{
		{"course": "CMSC131", "professor": "Nelson Padua-Perez", "A": float64(10), "B": float64(10)},
		{"course": "CMSC131", "professor": "Fawzi Emad", "C": float64(5)},
		{"course": "CMSC131"},
	})
	f.ratings.SetOne("/professor", q("name", "Nelson Padua-Perez"), provider.Record{
		"name": "Nelson Padua-Perez", "average_rating": 4.5,
	})
	return f
}

func TestFetchCourseHead_MergesProviders(t *testing.T) {
	f := newFixture(t)
	c, err := f.cat.FetchCourseHead(context.Background(), "cmsc 131")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Code != "CMSC131" || c.Title != "Object-Oriented Programming I" || c.Credits != 4 {
		t.Errorf("metadata not from ratings provider: %+v", c)
	}
	if len(c.Sections) != 2 {
		t.Fatalf("expected the broken section to be dropped, got %d sections", len(c.Sections))
	}
	if c.Sections[0].OpenSeats != 5 || len(c.Sections[0].Meetings) != 3 {
		t.Errorf("unexpected section %+v", c.Sections[0])
	}
	if len(c.ProfessorGPA) != 0 {
		t.Error("head must not fetch grades")
	}
}

func TestFetchCourseHead_FallsBackToRegistrar(t *testing.T) {
	f := newFixture(t)
	f.ratings.Fail("/course", q("name", "CMSC131"), errors.New("connection refused"))
	f.registrar.SetOne("/courses/CMSC131", nil, provider.Record{
		"course_id": "CMSC131", "name": "OOP I (registrar)", "credits": "4",
	})
	c, err := f.cat.FetchCourseHead(context.Background(), "CMSC131")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Title != "OOP I (registrar)" || len(c.Sections) != 2 {
		t.Errorf("fallback head not used: %+v", c)
	}
}

func TestFetchCourseHead_SectionsFallBackToRatings(t *testing.T) {
	f := newFixture(t)
	f.registrar.Fail("/courses/CMSC131/sections", nil, errors.New("503"))
	f.ratings.SetMany("/sections", q("course", "CMSC131"), []provider.Record{
		{"section_id": "CMSC131-0101", "seats": "3/30", "meetings": []any{"MWF 10:00-10:50am"}},
	})
	c, err := f.cat.FetchCourseHead(context.Background(), "CMSC131")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Sections) != 1 || c.Sections[0].OpenSeats != 3 {
		t.Errorf("ratings sections not used: %+v", c.Sections)
	}
}

func TestFetchCourseHead_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.cat.FetchCourseHead(context.Background(), "CMSC999")
	var le *LookupError
	if !errors.As(err, &le) || le.Kind != KindCourse || le.Key != "CMSC999" {
		t.Fatalf("expected course LookupError, got %v", err)
	}
	if !errors.Is(err, upstream.ErrNotFound) {
		t.Errorf("cause should be ErrNotFound: %v", err)
	}

	if _, err := f.cat.FetchCourseHead(context.Background(), "not a code"); !errors.As(err, &le) {
		t.Errorf("invalid code must be a LookupError, got %v", err)
	}
}

func TestFetchCourseHead_AdaptationErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.ratings.SetOne("/course", q("name", "MATH140"), provider.Record{"department": "MATH", "course_number": "140"})
	_, err := f.cat.FetchCourseHead(context.Background(), "MATH140")
	var ae *provider.AdaptationError
	if !errors.As(err, &ae) || ae.Field != "title" {
		t.Fatalf("expected title AdaptationError, got %v", err)
	}
}

type blockingFetcher struct{}

func (blockingFetcher) FetchOne(ctx context.Context, _ string, _ url.Values) (provider.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingFetcher) FetchMany(ctx context.Context, _ string, _ url.Values) ([]provider.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFetchCourseHead_Timeout(t *testing.T) {
	cat := New(blockingFetcher{}, blockingFetcher{}, Options{Timeout: 20 * time.Millisecond, Logger: log.New(io.Discard, "", 0)})
	_, err := cat.FetchCourseHead(context.Background(), "CMSC131")
	var le *LookupError
	if !errors.As(err, &le) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected LookupError caused by deadline, got %v", err)
	}
}

func TestFetchCourse_RatingsAndGrades(t *testing.T) {
	f := newFixture(t)
	c, err := f.cat.FetchCourse(context.Background(), "CMSC131")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g := c.GPAFor("Nelson Padua-Perez"); !g.Valid || g.Value != 3.5 {
		t.Errorf("Nelson gpa = %v, want 3.5", g)
	}
	if g := c.GPAFor("Fawzi Emad"); !g.Valid || g.Value != 2.0 {
		t.Errorf("Fawzi gpa = %v, want 2.0", g)
	}
	if r := c.Rating("Nelson Padua-Perez"); !r.Valid || r.Value != 4.5 {
		t.Errorf("Nelson rating = %v", r)
	}
	if r := c.Rating("Fawzi Emad"); r.Valid {
		t.Errorf("unreviewed professor must be unknown, got %v", r)
	}
	// (3.5*20 + 2.0*5) / 25
	if !c.AverageGPA.Valid || c.AverageGPA.Value != 3.2 {
		t.Errorf("course gpa = %v, want 3.2", c.AverageGPA)
	}
	ranked := c.RankedProfessors()
	if len(ranked) != 2 || ranked[0].Name != "Nelson Padua-Perez" {
		t.Errorf("ranking = %+v", ranked)
	}
}

func TestFetchCourse_GradesFallBackToRegistrar(t *testing.T) {
	f := newFixture(t)
	f.ratings.Fail("/grades", q("course", "CMSC131"), errors.New("down"))
	f.registrar.SetMany("/grades", q("course", "CMSC131"), []provider.Record{
		{"course": "CMSC131", "professor": "Fawzi Emad", "average_gpa": 2.75, "graded": float64(12)},
	})
	c, err := f.cat.FetchCourse(context.Background(), "CMSC131")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g := c.GPAFor("Fawzi Emad"); !g.Valid || g.Value != 2.75 {
		t.Errorf("registrar gpa not used: %v", g)
	}
	if g := c.GPAFor("Nelson Padua-Perez"); g.Valid {
		t.Errorf("no data must stay unknown: %v", g)
	}
}

func TestFetchCoursesByPage(t *testing.T) {
	f := newFixture(t)
	f.ratings.SetMany("/courses", q("limit", "2", "offset", "0"), []provider.Record{
		{"department": "CMSC", "course_number": "131", "title": "OOP I"},
		{"department": "CMSC"},
		{"department": "CMSC", "course_number": "132", "title": "OOP II"},
	})
	ctx := context.Background()

	calls := f.ratings.Calls()
	l, err := f.cat.FetchCoursesByPage(ctx, 0)
	if err != nil || l.Len() != 0 || f.ratings.Calls() != calls {
		t.Errorf("page 0 must be empty without fetching: %v, %v", l.Codes(), err)
	}

	l, err = f.cat.FetchCoursesByPage(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codes := l.Codes(); len(codes) != 1 || codes[0] != "CMSC131" {
		t.Errorf("page 1 = %v", codes)
	}

	l, err = f.cat.FetchCoursesByPage(ctx, 500)
	if err != nil || l.Len() != 0 {
		t.Errorf("page past the end must be empty: %v, %v", l.Codes(), err)
	}

	f.ratings.Fail("/courses", q("limit", "2", "offset", "2"), errors.New("reset"))
	var le *LookupError
	if _, err := f.cat.FetchCoursesByPage(ctx, 2); !errors.As(err, &le) || le.Kind != KindPage {
		t.Errorf("transport failure must be a LookupError, got %v", err)
	}
}

func TestFetchCoursesByPage_OffsetOverflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	calls := f.ratings.Calls()
	for _, page := range []int{math.MaxInt/f.cat.PageSize() + 2, math.MaxInt} {
		l, err := f.cat.FetchCoursesByPage(ctx, page)
		if err != nil || l.Len() != 0 {
			t.Errorf("page %d must be empty: %v, %v", page, l.Codes(), err)
		}
	}
	if f.ratings.Calls() != calls {
		t.Error("pages whose offset overflows must not reach the provider")
	}
}

func TestFetchProfessorsByPage(t *testing.T) {
	f := newFixture(t)
	f.ratings.SetMany("/professors", q("limit", "100", "offset", "0"), []provider.Record{
		{"name": "Jon Snow", "average_rating": 3.5, "courses": []any{"MATH140"}},
		{"slug": "nameless"},
		{"name": "Fawzi Emad", "slug": "emad"},
	})
	ctx := context.Background()

	calls := f.ratings.Calls()
	for _, page := range []int{0, -3, math.MaxInt/ProfessorPageSize + 2} {
		if ps, err := f.cat.FetchProfessorsByPage(ctx, page); err != nil || len(ps) != 0 {
			t.Errorf("page %d must be empty: %v, %v", page, ps, err)
		}
	}
	if f.ratings.Calls() != calls {
		t.Error("out of range pages must not reach the provider")
	}

	ps, err := f.cat.FetchProfessorsByPage(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ps) != 2 || ps[0].Name != "Jon Snow" || ps[1].Slug != "emad" {
		t.Fatalf("page 1 = %+v", ps)
	}
	if ps[0].Slug != "jon_snow" || ps[0].AverageRating.Value != 3.5 || len(ps[0].Courses) != 0 {
		t.Errorf("listing carries name, slug and rating only: %+v", ps[0])
	}

	if ps, err := f.cat.FetchProfessorsByPage(ctx, 9); err != nil || len(ps) != 0 {
		t.Errorf("page past the end must be empty: %v, %v", ps, err)
	}

	f.ratings.Fail("/professors", q("limit", "100", "offset", "100"), errors.New("reset"))
	var le *LookupError
	if _, err := f.cat.FetchProfessorsByPage(ctx, 2); !errors.As(err, &le) || le.Kind != KindProfessorPage {
		t.Errorf("transport failure must be a LookupError, got %v", err)
	}
}

func TestFetchCoursesByGenEdTag(t *testing.T) {
	f := newFixture(t)
	f.registrar.SetMany("/courses", q("gen_ed", "FSAW"), []provider.Record{
		{"course_id": "ENGL101", "name": "Academic Writing", "gen_ed": []any{[]any{"FSAW"}}},
		{"course_id": "ENGL102", "name": "Mislabeled", "gen_ed": []any{"DSHU"}},
	})
	l, err := f.cat.FetchCoursesByGenEdTag(context.Background(), "fsaw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codes := l.Codes(); len(codes) != 1 || codes[0] != "ENGL101" {
		t.Errorf("gened list = %v", codes)
	}
	l, err = f.cat.FetchCoursesByGenEdTag(context.Background(), "NOPE")
	if err != nil || l.Len() != 0 {
		t.Errorf("unknown tag must be empty: %v, %v", l.Codes(), err)
	}
}

func TestFetchProfessor(t *testing.T) {
	f := newFixture(t)
	f.ratings.SetOne("/professor", q("name", "JON SNOW", "reviews", "true"), provider.Record{
		"name": "Jon Snow", "average_rating": 3.0,
		"reviews": []any{map[string]any{"professor": "Jon Snow", "course": "MATH140", "review": "Fine.", "rating": float64(3), "created": "2020-01-01"}},
	})
	f.ratings.SetOne("/professor", q("name", "Jon", "reviews", "true"), provider.Record{"name": "Jon Snow"})
	f.ratings.SetMany("/grades", q("professor", "Jon Snow"), []provider.Record{
		{"course": "MATH140", "professor": "Jon Snow", "A": float64(1), "C": float64(1)},
	})
	ctx := context.Background()

	p, err := f.cat.FetchProfessor(ctx, "JON SNOW")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Jon Snow" || p.AverageRating.Value != 3.0 {
		t.Errorf("unexpected professor %+v", p)
	}
	if g := p.GPAIn("MATH140"); !g.Valid || g.Value != 3.0 {
		t.Errorf("course gpa = %v, want 3.0", g)
	}
	if len(p.Reviews) != 1 || p.Reviews[0].Text != "Fine." || p.Reviews[0].Course != "MATH140" {
		t.Errorf("reviews = %+v", p.Reviews)
	}

	var le *LookupError
	if _, err := f.cat.FetchProfessor(ctx, "Jon"); !errors.As(err, &le) || le.Kind != KindProfessor {
		t.Errorf("partial name must not match, got %v", err)
	}
	if _, err := f.cat.FetchProfessor(ctx, "Nobody"); !errors.As(err, &le) {
		t.Errorf("unknown professor must be a LookupError, got %v", err)
	}
}

func TestSearchCourses(t *testing.T) {
	f := newFixture(t)
	f.ratings.SetMany("/search", q("query", "cmsc13"), []provider.Record{
		{"name": "CMSC131", "type": "course"},
		{"name": "Jon Snow", "type": "professor"},
		{"name": "CMSC139", "type": "course"},
	})
	l, err := f.cat.SearchCourses(context.Background(), "cmsc13")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codes := l.Codes(); len(codes) != 1 || codes[0] != "CMSC131" {
		t.Errorf("search = %v", codes)
	}
}

func TestResolveSection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, s, err := f.cat.ResolveSection(ctx, "CMSC131-0201")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != "CMSC131-0201" || !s.IsFull() || c.Code != "CMSC131" {
		t.Errorf("resolved %s / %+v", c.Code, s)
	}
	if !c.GPAFor("Fawzi Emad").Valid {
		t.Error("resolved course must carry grade data")
	}

	var le *LookupError
	for _, id := range []string{"CMSC131-9999", "garbage", "CMSC999-0101"} {
		if _, _, err := f.cat.ResolveSection(ctx, id); !errors.As(err, &le) {
			t.Errorf("%s: expected LookupError, got %v", id, err)
		}
	}
}
