package schedule

import (
	"io"
	"log"
)

// DefaultPalette is the display palette used when none is configured.
var DefaultPalette = []string{"red", "blue", "green", "purple", "orange", "magenta"}

// NoColor is returned for courses that are not in the schedule.
const NoColor = "black"

// Option configures an Engine.
type Option func(*Engine)

// WithPalette replaces the color palette.  An empty palette is ignored.
func WithPalette(colors []string) Option {
	return func(e *Engine) {
		if len(colors) > 0 {
			e.palette = append([]string(nil), colors...)
		}
	}
}

// WithLogger sets where skipped tokens and other non-fatal conditions
// are reported.  A nil logger discards them.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		e.log = l
	}
}
