package catalog

import (
	"errors"
	"fmt"

	"github.com/iliyamo/schedule-builder/internal/provider"
)

// Lookup kinds.
const (
	KindCourse        = "course"
	KindSection       = "section"
	KindProfessor     = "professor"
	KindPage          = "page"
	KindProfessorPage = "professor_page"
	KindGenEd         = "gened"
	KindSearch        = "search"
)

// LookupError reports that a requested entity could not be found or
// could not be fetched (not found, timeout, transport failure).
type LookupError struct {
	Kind string // what was looked up
	Key  string // the code, id, name or page asked for
	Err  error  // cause
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("catalog: %s %q not found", e.Kind, e.Key)
	}
	return fmt.Sprintf("catalog: %s %q: %v", e.Kind, e.Key, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// failure picks the error a single lookup returns once every source has
// failed.  A broken record takes precedence over "not found" because it
// points at a provider problem rather than a bad key.
func failure(kind, key string, errs ...error) error {
	for _, err := range errs {
		var ae *provider.AdaptationError
		if errors.As(err, &ae) {
			return ae
		}
	}
	return &LookupError{Kind: kind, Key: key, Err: errors.Join(errs...)}
}
