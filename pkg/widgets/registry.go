package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetInput    = "input"
	WidgetTextarea = "textarea"
	WidgetSelect   = "select"
	WidgetDate     = "date"
	WidgetDatetime = "datetime"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on registered matchers. Higher
// priority wins; ties fall back to registration order. Fields no matcher
// claims resolve to the plain input widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. The boolean is false when the
// name is the input fallback rather than a matcher decision.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if r == nil {
		return WidgetInput, false
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return WidgetInput, false
}

// InputType returns the HTML input type used when a field renders through
// the input widget.
func InputType(field model.Field) string {
	switch field.Kind.Normalize() {
	case model.FieldKindEmail:
		return "email"
	case model.FieldKindNumber:
		return "number"
	default:
		return "text"
	}
}

func (r *Registry) registerBuiltins() {
	kindIs := func(kind model.FieldKind) Matcher {
		return func(field model.Field) bool {
			return field.Kind.Normalize() == kind
		}
	}

	r.Register(WidgetDatetime, 90, kindIs(model.FieldKindDatetime))
	r.Register(WidgetDate, 80, kindIs(model.FieldKindDate))
	r.Register(WidgetSelect, 70, kindIs(model.FieldKindSelect))
	r.Register(WidgetTextarea, 60, kindIs(model.FieldKindTextarea))
	r.Register(WidgetInput, 10, func(field model.Field) bool {
		switch field.Kind.Normalize() {
		case model.FieldKindText, model.FieldKindEmail, model.FieldKindNumber:
			return true
		default:
			return false
		}
	})
}
