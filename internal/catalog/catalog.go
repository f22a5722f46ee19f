// Package catalog is the single entry point for course data.  It merges
// course metadata and professor ratings from the ratings provider with
// live sections and seat counts from the registrar, falling back to the
// other provider when one side fails.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/schedule-builder/internal/model"
	"github.com/iliyamo/schedule-builder/internal/provider"
	"github.com/iliyamo/schedule-builder/internal/provider/planetterp"
	"github.com/iliyamo/schedule-builder/internal/provider/umdio"
	"github.com/iliyamo/schedule-builder/internal/upstream"
)

// Upstream paths.  Ratings provider first, registrar second.
const (
	pathRatingsCourse     = "/course"
	pathRatingsCourses    = "/courses"
	pathRatingsSections   = "/sections"
	pathRatingsGrades     = "/grades"
	pathRatingsProfessor  = "/professor"
	pathRatingsProfessors = "/professors"
	pathRatingsSearch     = "/search"

	pathRegistrarCourses = "/courses"
	pathRegistrarGrades  = "/grades"
)

// ProfessorPageSize is the fixed page size of the professor listing.
const ProfessorPageSize = 100

// Options tunes a Catalog.  Zero values select the defaults.
type Options struct {
	PageSize int           // courses per page, default model.DefaultPageSize
	Timeout  time.Duration // per-call deadline, 0 means none beyond ctx
	Logger   *log.Logger   // default log.Default()
}

// Catalog answers course, professor and section queries.  It holds no
// mutable state and is safe for concurrent use.
type Catalog struct {
	ratings   upstream.Fetcher
	registrar upstream.Fetcher
	ra        provider.Adapter
	rb        provider.Adapter
	pageSize  int
	timeout   time.Duration
	log       *log.Logger
}

// New builds a Catalog over the two providers.
func New(ratings, registrar upstream.Fetcher, opts Options) *Catalog {
	if opts.PageSize <= 0 {
		opts.PageSize = model.DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Catalog{
		ratings:   ratings,
		registrar: registrar,
		ra:        planetterp.Adapter{},
		rb:        umdio.Adapter{},
		pageSize:  opts.PageSize,
		timeout:   opts.Timeout,
		log:       opts.Logger,
	}
}

// PageSize is the fixed page size used by FetchCoursesByPage.
func (c *Catalog) PageSize() int { return c.pageSize }

func (c *Catalog) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// FetchCourseHead returns course metadata plus sections but without
// professor ratings or grade data.
func (c *Catalog) FetchCourseHead(ctx context.Context, code string) (model.Course, error) {
	canon, err := model.CanonicalCourseCode(code)
	if err != nil {
		return model.Course{}, &LookupError{Kind: KindCourse, Key: code, Err: err}
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		head     model.Course
		headErr  error
		sections []model.Section
		secErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		head, headErr = c.ratingsHead(ctx, canon)
	}()
	go func() {
		defer wg.Done()
		sections, secErr = c.registrarSections(ctx, canon)
	}()
	wg.Wait()

	if headErr != nil {
		c.log.Printf("catalog: ratings head %s: %v, trying registrar", canon, headErr)
		var regErr error
		head, regErr = c.registrarHead(ctx, canon)
		if regErr != nil {
			return model.Course{}, failure(KindCourse, canon, headErr, regErr)
		}
	}
	if secErr != nil {
		c.log.Printf("catalog: registrar sections %s: %v, trying ratings", canon, secErr)
		sections, secErr = c.ratingsSections(ctx, canon)
		if secErr != nil {
			c.log.Printf("catalog: no sections for %s: %v", canon, secErr)
		}
	}
	for _, s := range sections {
		if err := head.AddSection(s); err != nil {
			c.log.Printf("catalog: %v", err)
		}
	}
	return head, nil
}

// FetchCourse is FetchCourseHead plus professor ratings and the average
// GPA of each professor in the course.
func (c *Catalog) FetchCourse(ctx context.Context, code string) (model.Course, error) {
	course, err := c.FetchCourseHead(ctx, code)
	if err != nil {
		return model.Course{}, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	rows := c.courseGrades(ctx, course.Code)
	for name, gpa := range model.ByProfessor(model.MergeGrades(rows), course.Code) {
		course.ProfessorGPA[name] = gpa
	}
	if !course.AverageGPA.Valid {
		course.AverageGPA = overallGPA(rows)
	}

	names := professorNames(course)
	ratings := make([]model.Score, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		i, name := i, name
		wg.Add(1)
		go func() {
			defer wg.Done()
			ratings[i] = c.professorRating(ctx, name)
		}()
	}
	wg.Wait()
	for i, name := range names {
		course.ProfessorRatings[name] = ratings[i]
	}
	return course, nil
}

// FetchCoursesByPage returns the 1-based page of the course listing.
// Pages below 1 or past the end are empty, not errors.
func (c *Catalog) FetchCoursesByPage(ctx context.Context, page int) (model.CourseList, error) {
	if page < 1 || page-1 > math.MaxInt/c.pageSize {
		return model.NewCourseList(nil, c.pageSize), nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	q := url.Values{
		"limit":  {strconv.Itoa(c.pageSize)},
		"offset": {strconv.Itoa((page - 1) * c.pageSize)},
	}
	recs, err := c.ratings.FetchMany(ctx, pathRatingsCourses, q)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			return model.NewCourseList(nil, c.pageSize), nil
		}
		return model.CourseList{}, &LookupError{Kind: KindPage, Key: strconv.Itoa(page), Err: err}
	}
	if len(recs) > c.pageSize {
		recs = recs[:c.pageSize]
	}
	return model.NewCourseList(c.adaptHeads(c.ra, recs), c.pageSize), nil
}

// FetchProfessorsByPage returns the 1-based page of the professor
// listing, ProfessorPageSize names at a time.  Only name, slug and
// rating are filled.  Pages below 1 or past the end are empty.
func (c *Catalog) FetchProfessorsByPage(ctx context.Context, page int) ([]model.Professor, error) {
	if page < 1 || page-1 > math.MaxInt/ProfessorPageSize {
		return nil, nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	q := url.Values{
		"limit":  {strconv.Itoa(ProfessorPageSize)},
		"offset": {strconv.Itoa((page - 1) * ProfessorPageSize)},
	}
	recs, err := c.ratings.FetchMany(ctx, pathRatingsProfessors, q)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			return nil, nil
		}
		return nil, &LookupError{Kind: KindProfessorPage, Key: strconv.Itoa(page), Err: err}
	}
	if len(recs) > ProfessorPageSize {
		recs = recs[:ProfessorPageSize]
	}
	out := make([]model.Professor, 0, len(recs))
	for _, r := range recs {
		p, err := c.ra.Professor(r)
		if err != nil {
			c.log.Printf("catalog: dropping professor: %v", err)
			continue
		}
		out = append(out, model.Professor{Name: p.Name, Slug: p.Slug, AverageRating: p.AverageRating})
	}
	return out, nil
}

// FetchCoursesByGenEdTag lists courses satisfying a general-education
// tag.  An unknown tag yields an empty list.
func (c *Catalog) FetchCoursesByGenEdTag(ctx context.Context, tag string) (model.CourseList, error) {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		return model.NewCourseList(nil, c.pageSize), nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	recs, err := c.registrar.FetchMany(ctx, pathRegistrarCourses, url.Values{"gen_ed": {tag}})
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			return model.NewCourseList(nil, c.pageSize), nil
		}
		return model.CourseList{}, &LookupError{Kind: KindGenEd, Key: tag, Err: err}
	}
	var out []model.Course
	for _, course := range c.adaptHeads(c.rb, recs) {
		if hasTag(course.GenEds, tag) {
			out = append(out, course)
		}
	}
	return model.NewCourseList(out, c.pageSize), nil
}

// FetchProfessor looks a professor up by name, reviews included.  The
// match is on the slug, so case and punctuation do not matter, but it
// is otherwise exact.
func (c *Catalog) FetchProfessor(ctx context.Context, name string) (model.Professor, error) {
	slug := model.Slugify(name)
	if slug == "" {
		return model.Professor{}, &LookupError{Kind: KindProfessor, Key: name}
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	rec, err := c.ratings.FetchOne(ctx, pathRatingsProfessor, url.Values{"name": {name}, "reviews": {"true"}})
	if err != nil {
		return model.Professor{}, &LookupError{Kind: KindProfessor, Key: name, Err: err}
	}
	p, err := c.ra.Professor(rec)
	if err != nil {
		return model.Professor{}, err
	}
	if model.Slugify(p.Name) != slug && !strings.EqualFold(p.Slug, slug) {
		return model.Professor{}, &LookupError{Kind: KindProfessor, Key: name,
			Err: fmt.Errorf("%w: provider answered with %q", upstream.ErrNotFound, p.Name)}
	}

	recs, err := c.ratings.FetchMany(ctx, pathRatingsGrades, url.Values{"professor": {p.Name}})
	if err != nil {
		c.log.Printf("catalog: grades for %s: %v", p.Name, err)
	}
	rows := c.adaptGrades(c.ra, recs)
	for course, gpa := range model.ByCourse(model.MergeGrades(rows), p.Name) {
		p.CourseGPA[course] = gpa
		if !hasTag(p.Courses, course) {
			p.Courses = append(p.Courses, course)
		}
	}
	return p, nil
}

// SearchCourses returns the course hits of a ratings-provider search,
// at most one page of them.
func (c *Catalog) SearchCourses(ctx context.Context, query string) (model.CourseList, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.NewCourseList(nil, c.pageSize), nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	hits, err := c.ratings.FetchMany(ctx, pathRatingsSearch, url.Values{"query": {query}})
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			return model.NewCourseList(nil, c.pageSize), nil
		}
		return model.CourseList{}, &LookupError{Kind: KindSearch, Key: query, Err: err}
	}
	var out []model.Course
	for _, hit := range hits {
		if len(out) == c.pageSize {
			break
		}
		if kind, _, _ := provider.String(hit, "type"); kind != "course" {
			continue
		}
		code, _, _ := provider.String(hit, "name")
		head, err := c.ratingsHead(ctx, code)
		if err != nil {
			c.log.Printf("catalog: search hit %q: %v", code, err)
			continue
		}
		out = append(out, head)
	}
	return model.NewCourseList(out, c.pageSize), nil
}

// ResolveSection finds a section by its full id ("CMSC131-0101") and
// returns it with its fully populated course.
func (c *Catalog) ResolveSection(ctx context.Context, sectionID string) (model.Course, model.Section, error) {
	code := model.SectionCourseCode(strings.TrimSpace(sectionID))
	if code == "" {
		return model.Course{}, model.Section{}, &LookupError{Kind: KindSection, Key: sectionID}
	}
	course, err := c.FetchCourse(ctx, code)
	if err != nil {
		return model.Course{}, model.Section{}, err
	}
	for _, s := range course.Sections {
		if s.ID == strings.TrimSpace(sectionID) {
			return course, s, nil
		}
	}
	return model.Course{}, model.Section{}, &LookupError{Kind: KindSection, Key: sectionID, Err: upstream.ErrNotFound}
}

func (c *Catalog) ratingsHead(ctx context.Context, code string) (model.Course, error) {
	rec, err := c.ratings.FetchOne(ctx, pathRatingsCourse, url.Values{"name": {code}})
	if err != nil {
		return model.Course{}, err
	}
	return c.head(c.ra, rec, code)
}

func (c *Catalog) registrarHead(ctx context.Context, code string) (model.Course, error) {
	rec, err := c.registrar.FetchOne(ctx, pathRegistrarCourses+"/"+code, nil)
	if err != nil {
		return model.Course{}, err
	}
	return c.head(c.rb, rec, code)
}

func (c *Catalog) head(a provider.Adapter, rec provider.Record, code string) (model.Course, error) {
	course, err := a.CourseHead(rec)
	if err != nil {
		return model.Course{}, err
	}
	if code != "" && course.Code != code {
		return model.Course{}, fmt.Errorf("%w: asked for %s, %s answered with %s", upstream.ErrNotFound, code, a.Name(), course.Code)
	}
	return course, nil
}

func (c *Catalog) registrarSections(ctx context.Context, code string) ([]model.Section, error) {
	recs, err := c.registrar.FetchMany(ctx, pathRegistrarCourses+"/"+code+"/sections", nil)
	if err != nil {
		return nil, err
	}
	return c.adaptSections(c.rb, code, recs), nil
}

func (c *Catalog) ratingsSections(ctx context.Context, code string) ([]model.Section, error) {
	recs, err := c.ratings.FetchMany(ctx, pathRatingsSections, url.Values{"course": {code}})
	if err != nil {
		return nil, err
	}
	return c.adaptSections(c.ra, code, recs), nil
}

// courseGrades prefers the ratings provider's histograms and falls back
// to the registrar's aggregates when those are unavailable.
func (c *Catalog) courseGrades(ctx context.Context, code string) []model.GradeSummary {
	q := url.Values{"course": {code}}
	recs, err := c.ratings.FetchMany(ctx, pathRatingsGrades, q)
	if err == nil {
		if rows := c.adaptGrades(c.ra, recs); len(rows) > 0 {
			return rows
		}
	} else {
		c.log.Printf("catalog: ratings grades %s: %v", code, err)
	}
	recs, err = c.registrar.FetchMany(ctx, pathRegistrarGrades, q)
	if err != nil {
		c.log.Printf("catalog: registrar grades %s: %v", code, err)
		return nil
	}
	return c.adaptGrades(c.rb, recs)
}

func (c *Catalog) professorRating(ctx context.Context, name string) model.Score {
	rec, err := c.ratings.FetchOne(ctx, pathRatingsProfessor, url.Values{"name": {name}})
	if err != nil {
		if !errors.Is(err, upstream.ErrNotFound) {
			c.log.Printf("catalog: rating for %s: %v", name, err)
		}
		return model.Unknown
	}
	p, err := c.ra.Professor(rec)
	if err != nil {
		c.log.Printf("catalog: %v", err)
		return model.Unknown
	}
	return p.AverageRating
}

func (c *Catalog) adaptHeads(a provider.Adapter, recs []provider.Record) []model.Course {
	out := make([]model.Course, 0, len(recs))
	for _, r := range recs {
		course, err := a.CourseHead(r)
		if err != nil {
			c.log.Printf("catalog: dropping course: %v", err)
			continue
		}
		out = append(out, course)
	}
	return out
}

func (c *Catalog) adaptSections(a provider.Adapter, code string, recs []provider.Record) []model.Section {
	out := make([]model.Section, 0, len(recs))
	for _, r := range recs {
		s, err := a.Section(code, r)
		if err != nil {
			c.log.Printf("catalog: dropping section: %v", err)
			continue
		}
		out = append(out, s)
	}
	return out
}

func (c *Catalog) adaptGrades(a provider.Adapter, recs []provider.Record) []model.GradeSummary {
	out := make([]model.GradeSummary, 0, len(recs))
	for _, r := range recs {
		g, err := a.Grade(r)
		if err != nil {
			c.log.Printf("catalog: dropping grade row: %v", err)
			continue
		}
		out = append(out, g)
	}
	return out
}

// professorNames collects everyone attached to the course in a stable
// order: rated professors first, then section instructors.
func professorNames(course model.Course) []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range model.SortedKeys(course.ProfessorRatings) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, s := range course.Sections {
		for _, name := range s.Instructors {
			if name != "" && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func overallGPA(rows []model.GradeSummary) model.Score {
	var points float64
	var n int
	for _, r := range rows {
		if !r.GPA.Valid || r.Graded <= 0 {
			continue
		}
		points += r.GPA.Value * float64(r.Graded)
		n += r.Graded
	}
	if n == 0 {
		return model.Unknown
	}
	return model.Known(points / float64(n))
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
