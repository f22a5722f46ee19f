package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/schedule-builder/internal/model"
	"github.com/iliyamo/schedule-builder/internal/schedule"
)

// CourseCatalog is the read side the handlers need.  *catalog.Catalog
// implements it.
type CourseCatalog interface {
	FetchCourse(ctx context.Context, code string) (model.Course, error)
	FetchCoursesByPage(ctx context.Context, page int) (model.CourseList, error)
	FetchCoursesByGenEdTag(ctx context.Context, tag string) (model.CourseList, error)
	FetchProfessor(ctx context.Context, name string) (model.Professor, error)
	FetchProfessorsByPage(ctx context.Context, page int) ([]model.Professor, error)
	SearchCourses(ctx context.Context, query string) (model.CourseList, error)
	ResolveSection(ctx context.Context, sectionID string) (model.Course, model.Section, error)
}

// CatalogHandler serves course, gen-ed, professor and search lookups.
type CatalogHandler struct {
	Catalog CourseCatalog
}

// CourseSummary is a course in list responses.
type CourseSummary struct {
	Code       string      `json:"code"`
	Title      string      `json:"title"`
	Credits    float64     `json:"credits"`
	GenEds     []string    `json:"gen_eds,omitempty"`
	AverageGPA model.Score `json:"average_gpa"`
}

// SectionView is a section with its meetings grouped for display, a
// full flag for the waitlist badge and whether it meets at all.
type SectionView struct {
	model.Section
	Weekly      map[string]string `json:"weekly"`
	Full        bool              `json:"full"`
	Synchronous bool              `json:"synchronous"`
}

// CourseDetail is the GET /v1/courses/:code response: the course, its
// sections in display form, its professors best first and the section
// ids each professor teaches.
type CourseDetail struct {
	model.Course
	Sections          []SectionView           `json:"sections"`
	Professors        []model.RankedProfessor `json:"professors"`
	ProfessorSections map[string][]string     `json:"sections_by_professor"`
}

func summaries(l model.CourseList) []CourseSummary {
	out := make([]CourseSummary, 0, l.Len())
	for _, c := range l.All() {
		out = append(out, CourseSummary{
			Code:       c.Code,
			Title:      c.Title,
			Credits:    c.Credits,
			GenEds:     c.GenEds,
			AverageGPA: c.AverageGPA,
		})
	}
	return out
}

func sectionView(s model.Section) SectionView {
	return SectionView{
		Section:     s,
		Weekly:      schedule.GroupedWeeklyView(s),
		Full:        s.IsFull(),
		Synchronous: s.Synchronous(),
	}
}

func sectionIDsByProfessor(course model.Course) map[string][]string {
	out := make(map[string][]string)
	for name, sections := range course.SectionsByProfessor() {
		for _, s := range sections {
			out[name] = append(out[name], s.ID)
		}
	}
	return out
}

// pageParam reads ?page=, default 1.
func pageParam(c echo.Context) (int, bool) {
	raw := c.QueryParam("page")
	if raw == "" {
		return 1, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ListCourses handles GET /v1/courses?page=N.  page defaults to 1; a page
// past the end is an empty list.
func (h *CatalogHandler) ListCourses(c echo.Context) error {
	page, ok := pageParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid page"})
	}
	list, err := h.Catalog.FetchCoursesByPage(c.Request().Context(), page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "page_size": list.PageSize(), "items": summaries(list)})
}

// GetCourse handles GET /v1/courses/:code with ratings, grade averages
// and ranked professors filled in.  ?professor= keeps only the sections
// that professor teaches.
func (h *CatalogHandler) GetCourse(c echo.Context) error {
	course, err := h.Catalog.FetchCourse(c.Request().Context(), c.Param("code"))
	if err != nil {
		return fail(c, err)
	}
	resp := CourseDetail{
		Course:            course,
		Sections:          make([]SectionView, 0, len(course.Sections)),
		Professors:        course.RankedProfessors(),
		ProfessorSections: sectionIDsByProfessor(course),
	}
	prof := c.QueryParam("professor")
	for _, s := range course.Sections {
		if prof != "" && !s.TaughtBy(prof) {
			continue
		}
		resp.Sections = append(resp.Sections, sectionView(s))
	}
	return c.JSON(http.StatusOK, resp)
}

// ListGenEd handles GET /v1/geneds/:tag.
func (h *CatalogHandler) ListGenEd(c echo.Context) error {
	list, err := h.Catalog.FetchCoursesByGenEdTag(c.Request().Context(), c.Param("tag"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": summaries(list)})
}

// ListProfessors handles GET /v1/professors?page=N.  A page past the end
// is an empty list.
func (h *CatalogHandler) ListProfessors(c echo.Context) error {
	page, ok := pageParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid page"})
	}
	profs, err := h.Catalog.FetchProfessorsByPage(c.Request().Context(), page)
	if err != nil {
		return fail(c, err)
	}
	if profs == nil {
		profs = []model.Professor{}
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "items": profs})
}

// GetProfessor handles GET /v1/professors/:name, reviews included.
func (h *CatalogHandler) GetProfessor(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid name"})
	}
	p, err := h.Catalog.FetchProfessor(c.Request().Context(), name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Search handles GET /v1/search?q=.  An empty query is an empty list.
func (h *CatalogHandler) Search(c echo.Context) error {
	list, err := h.Catalog.SearchCourses(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": summaries(list)})
}
