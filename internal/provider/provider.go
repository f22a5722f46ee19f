// Package provider translates raw upstream records into the canonical
// model.  Each upstream schema gets its own Adapter implementation in a
// sub-package; callers only ever see model values and AdaptationError.
package provider

import (
	"fmt"

	"github.com/iliyamo/schedule-builder/internal/model"
)

// Record is one decoded JSON object from an upstream provider.
type Record = map[string]any

// Adapter turns one provider's records into canonical values.  Adapters
// are stateless and never perform I/O.  Missing optional fields fall back
// to documented defaults; missing required fields produce an
// *AdaptationError.
type Adapter interface {
	// Name identifies the provider in errors and logs.
	Name() string
	// CourseHead adapts a course record without sections.
	CourseHead(r Record) (model.Course, error)
	// Section adapts one section record of the given course.
	Section(courseCode string, r Record) (model.Section, error)
	// Professor adapts a professor record.
	Professor(r Record) (model.Professor, error)
	// Grade adapts one grade record into a per-professor summary.
	Grade(r Record) (model.GradeSummary, error)
}

// AdaptationError reports a required upstream field that is missing or
// malformed.  It is local to one record.
type AdaptationError struct {
	Provider string // adapter name
	Field    string // offending field
	Record   string // best-effort identifier of the record
	Err      error  // underlying parse error, if any
}

func (e *AdaptationError) Error() string {
	id := e.Record
	if id == "" {
		id = "<unknown>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: record %s: field %q: %v", e.Provider, id, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: record %s: missing required field %q", e.Provider, id, e.Field)
}

func (e *AdaptationError) Unwrap() error { return e.Err }

// Missing builds an AdaptationError for an absent field.
func Missing(provider, record, field string) error {
	return &AdaptationError{Provider: provider, Field: field, Record: record}
}

// Malformed builds an AdaptationError for a present but unusable field.
func Malformed(provider, record, field string, err error) error {
	return &AdaptationError{Provider: provider, Field: field, Record: record, Err: err}
}
