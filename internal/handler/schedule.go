package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/schedule-builder/internal/middleware"
	"github.com/iliyamo/schedule-builder/internal/model"
	"github.com/iliyamo/schedule-builder/internal/queue"
	"github.com/iliyamo/schedule-builder/internal/schedule"
	"github.com/iliyamo/schedule-builder/internal/session"
)

// SectionResolver finds a section and its course by section id.
type SectionResolver interface {
	ResolveSection(ctx context.Context, sectionID string) (model.Course, model.Section, error)
}

// EventPublisher receives a ScheduleChangedEvent after every mutation.
type EventPublisher interface {
	PublishScheduleChanged(ctx context.Context, ev queue.ScheduleChangedEvent) error
}

// ScheduleHandler edits the caller's schedule.  Only the serialized
// token is stored per session; every request rebuilds the engine from it
// so the schedule always reflects current seat counts.
type ScheduleHandler struct {
	Sections SectionResolver
	Store    session.Store
	Events   EventPublisher // nil disables change events
	Palette  []string
	ICSWeeks int
	Logger   *log.Logger
}

// EntryView is one course of the schedule in responses.
type EntryView struct {
	CourseCode string      `json:"course_code"`
	Title      string      `json:"title"`
	Credits    float64     `json:"credits"`
	Color      string      `json:"color"`
	Section    SectionView `json:"section"`
}

// WarningView adds the display text to a warning.
type WarningView struct {
	schedule.Warning
	Text string `json:"text"`
}

// ScheduleView is the response of every schedule endpoint.  Schedule is
// the token a client can later hand to POST /v1/schedule/load.
type ScheduleView struct {
	Items      []EntryView                   `json:"items"`
	Days       map[string][]schedule.DaySlot `json:"days"`
	Warnings   []WarningView                 `json:"warnings"`
	Credits    float64                       `json:"credits"`
	AverageGPA float64                       `json:"average_gpa"`
	Schedule   string                        `json:"schedule"`
	Skipped    []string                      `json:"skipped,omitempty"`
}

type addSectionRequest struct {
	SectionID string `json:"section_id" validate:"required"`
}

type loadRequest struct {
	Schedule string `json:"schedule"`
}

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func (h *ScheduleHandler) logger() *log.Logger {
	if h.Logger == nil {
		return log.Default()
	}
	return h.Logger
}

func (h *ScheduleHandler) newEngine() *schedule.Engine {
	return schedule.New(schedule.WithPalette(h.Palette), schedule.WithLogger(h.logger()))
}

// open rebuilds the session's engine from its stored token.
func (h *ScheduleHandler) open(c echo.Context) (*schedule.Engine, []string, error) {
	ctx := c.Request().Context()
	token, err := h.Store.Load(ctx, middleware.SessionID(c))
	if err != nil {
		return nil, nil, err
	}
	e := h.newEngine()
	skipped := e.Deserialize(ctx, token, h.Sections.ResolveSection)
	return e, skipped, nil
}

// commit stores the engine's token and announces the change.  A failed
// publish is logged; the edit itself has already succeeded.
func (h *ScheduleHandler) commit(c echo.Context, e *schedule.Engine, ev queue.ScheduleChangedEvent) error {
	ctx := c.Request().Context()
	sid := middleware.SessionID(c)
	token := e.Serialize()
	if err := h.Store.Save(ctx, sid, token); err != nil {
		return err
	}
	if h.Events == nil {
		return nil
	}
	ev.SessionID = sid
	ev.Schedule = token
	ev.Credits = e.TotalCredits()
	ev.AverageGPA = e.AverageGPA()
	for _, w := range e.Warnings() {
		ev.Warnings = append(ev.Warnings, w.Text())
	}
	if err := h.Events.PublishScheduleChanged(ctx, ev); err != nil {
		h.logger().Printf("schedule-handler: publish %s for %s: %v", ev.Action, sid, err)
	}
	return nil
}

func view(e *schedule.Engine, skipped []string) ScheduleView {
	v := ScheduleView{
		Items:      []EntryView{},
		Days:       map[string][]schedule.DaySlot{},
		Warnings:   []WarningView{},
		Credits:    e.TotalCredits(),
		AverageGPA: e.AverageGPA(),
		Schedule:   e.Serialize(),
		Skipped:    skipped,
	}
	for _, entry := range e.Entries() {
		v.Items = append(v.Items, EntryView{
			CourseCode: entry.Course.Code,
			Title:      entry.Course.Title,
			Credits:    entry.Course.Credits,
			Color:      entry.Color,
			Section:    sectionView(entry.Section),
		})
	}
	for _, d := range weekdays {
		if slots := e.Day(d); len(slots) > 0 {
			v.Days[model.DayLabel(d)] = slots
		}
	}
	for _, w := range e.Warnings() {
		v.Warnings = append(v.Warnings, WarningView{Warning: w, Text: w.Text()})
	}
	return v
}

// Get handles GET /v1/schedule.
func (h *ScheduleHandler) Get(c echo.Context) error {
	e, skipped, err := h.open(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view(e, skipped))
}

// AddSection handles POST /v1/schedule/sections with {"section_id": "..."}.
// A section that overlaps another course answers 409 and leaves the
// schedule untouched; a full section is added with a warning.
func (h *ScheduleHandler) AddSection(c echo.Context) error {
	var req addSectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "section_id is required"})
	}
	e, skipped, err := h.open(c)
	if err != nil {
		return fail(c, err)
	}
	course, section, err := h.Sections.ResolveSection(c.Request().Context(), req.SectionID)
	if err != nil {
		return fail(c, err)
	}
	if err := e.AddSection(course, section); err != nil {
		return fail(c, err)
	}
	ev := queue.ScheduleChangedEvent{Action: queue.ActionAdd, CourseCode: course.Code, SectionID: section.ID}
	if err := h.commit(c, e, ev); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view(e, skipped))
}

// RemoveSection handles DELETE /v1/schedule/sections/:code.  Removing a
// course that is not in the schedule answers the unchanged view.
func (h *ScheduleHandler) RemoveSection(c echo.Context) error {
	code, err := model.CanonicalCourseCode(c.Param("code"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course code"})
	}
	e, skipped, err := h.open(c)
	if err != nil {
		return fail(c, err)
	}
	section, ok := e.Section(code)
	if !ok {
		return c.JSON(http.StatusOK, view(e, skipped))
	}
	e.RemoveSection(code)
	ev := queue.ScheduleChangedEvent{Action: queue.ActionRemove, CourseCode: code, SectionID: section.ID}
	if err := h.commit(c, e, ev); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view(e, skipped))
}

// Clear handles DELETE /v1/schedule.
func (h *ScheduleHandler) Clear(c echo.Context) error {
	e := h.newEngine()
	if err := h.commit(c, e, queue.ScheduleChangedEvent{Action: queue.ActionClear}); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view(e, nil))
}

// Load handles POST /v1/schedule/load with {"schedule": "<token>"}.  The
// token replaces the current schedule; ids that no longer resolve or
// that conflict are listed under "skipped".
func (h *ScheduleHandler) Load(c echo.Context) error {
	var req loadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	e := h.newEngine()
	skipped := e.Deserialize(c.Request().Context(), req.Schedule, h.Sections.ResolveSection)
	if err := h.commit(c, e, queue.ScheduleChangedEvent{Action: queue.ActionLoad}); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view(e, skipped))
}

// Export handles GET /v1/schedule/export.ics?start=YYYY-MM-DD&tz=&weeks=.
// start defaults to today and tz to UTC; meeting times are wall-clock
// times in tz.
func (h *ScheduleHandler) Export(c echo.Context) error {
	loc := time.UTC
	if tz := c.QueryParam("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tz"})
		}
		loc = l
	}
	start := time.Now().In(loc)
	if raw := c.QueryParam("start"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start date"})
		}
		start = t
	}
	weeks := h.ICSWeeks
	if raw := c.QueryParam("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid weeks"})
		}
		weeks = n
	}
	e, _, err := h.open(c)
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="schedule.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(e.ExportICS(start, weeks)))
}
