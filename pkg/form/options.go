package form

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-formpreview/pkg/widgets"
)

// Option configures a Controller.
type Option func(*Controller)

// WithWidgets overrides the widget registry used to resolve field widgets.
func WithWidgets(reg *widgets.Registry) Option {
	return func(c *Controller) {
		if reg != nil {
			c.widgets = reg
		}
	}
}

// WithLogger sets the logger used for submit diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLocation sets the location picked dates are normalised into.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.location = loc
		}
	}
}
