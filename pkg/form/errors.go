package form

import "errors"

var (
	// ErrUnknownField is returned when an edit targets a name outside the
	// current field list.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrUnknownOption is returned when a select receives a value that is not
	// one of its options.
	ErrUnknownOption = errors.New("form: value is not a field option")
	// ErrNoDateSelected is returned when a time is set on a datetime field
	// before a date has been picked.
	ErrNoDateSelected = errors.New("form: no date selected")
	// ErrInvalidTime is returned when a time of day cannot be parsed.
	ErrInvalidTime = errors.New("form: invalid time of day")
	// ErrWidgetMismatch is returned when an edit does not match the field's
	// widget (for example typing free text into a select).
	ErrWidgetMismatch = errors.New("form: operation not supported by widget")
)
