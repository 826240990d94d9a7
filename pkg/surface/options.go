package surface

import (
	"log/slog"
	"maps"
)

// Option configures a Surface.
type Option func(*Surface)

// WithMode selects the isolation boundary.
func WithMode(mode Mode) Option {
	return func(s *Surface) {
		if mode != "" {
			s.mode = mode
		}
	}
}

// WithCSSVars applies custom properties to the boundary. Keys without a
// leading "--" are prefixed.
func WithCSSVars(vars map[string]string) Option {
	return func(s *Surface) {
		if len(vars) == 0 {
			return
		}
		if s.vars == nil {
			s.vars = make(map[string]string, len(vars))
		}
		maps.Copy(s.vars, normalizeVars(vars))
	}
}

// WithLogger overrides the logger used for dropped styles and markup.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surface) {
		if logger != nil {
			s.logger = logger
		}
	}
}
