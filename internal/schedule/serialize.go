package schedule

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/schedule-builder/internal/model"
)

// Resolver turns a section id back into its course and section.
type Resolver func(ctx context.Context, sectionID string) (model.Course, model.Section, error)

// Serialize renders the active section ids ordered by course code,
// joined by commas.  An empty schedule is "".
func (e *Engine) Serialize() string {
	ids := make([]string, 0, len(e.entries))
	for _, code := range e.codes() {
		ids = append(ids, e.entries[code].Section.ID)
	}
	return strings.Join(ids, ",")
}

// Deserialize adds every section named in token to the schedule.  Empty
// ids are ignored.  Ids the resolver cannot find, and sections that
// conflict with one added earlier in the token, are logged and skipped;
// their ids are returned.  The load stops early if ctx is done.
func (e *Engine) Deserialize(ctx context.Context, token string, resolve Resolver) (skipped []string) {
	for _, raw := range strings.Split(token, ",") {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			e.log.Printf("schedule: load interrupted at %s: %v", id, err)
			skipped = append(skipped, id)
			continue
		}
		course, section, err := resolve(ctx, id)
		if err != nil {
			e.log.Printf("schedule: skipping %s: %v", id, err)
			skipped = append(skipped, id)
			continue
		}
		if err := e.AddSection(course, section); err != nil {
			var ce *ConflictError
			if errors.As(err, &ce) {
				e.log.Printf("schedule: dropping %s: %v", id, err)
			} else {
				e.log.Printf("schedule: skipping %s: %v", id, err)
			}
			skipped = append(skipped, id)
		}
	}
	return skipped
}
