package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formpreview/pkg/model"
)

const (
	MessageInvalidEmail  = "Invalid email"
	MessageInvalidOption = "Invalid option"
	MessageExpectNumber  = "Expected number"
	MessageExpectDate    = "Expected date"
	MessageExpectString  = "Expected string"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)

// dateLayouts are tried in order when a date-like field receives a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// base is the kind-specific part of a rule: it decides what "empty" means and
// how a present value is checked and coerced.
type base struct {
	// stringKind marks rules whose empty string is a value rather than an
	// absence (text-like kinds).
	stringKind bool
	empty      func(value any) bool
	coerce     func(field model.Field, value any) (any, string)
}

type baseConstructor func() base

// kindTable is the tagged dispatch from field kind to rule constructor.
var kindTable = map[model.FieldKind]baseConstructor{
	model.FieldKindText:     stringBase,
	model.FieldKindTextarea: stringBase,
	model.FieldKindEmail:    emailBase,
	model.FieldKindSelect:   selectBase,
	model.FieldKindNumber:   numberBase,
	model.FieldKindDate:     dateBase,
	model.FieldKindDatetime: dateBase,
}

func baseFor(kind model.FieldKind) base {
	if ctor, ok := kindTable[kind.Normalize()]; ok {
		return ctor()
	}
	return stringBase()
}

func stringBase() base {
	return base{
		stringKind: true,
		empty:      isEmptyString,
		coerce: func(_ model.Field, value any) (any, string) {
			str, ok := value.(string)
			if !ok {
				return nil, MessageExpectString
			}
			return str, ""
		},
	}
}

func emailBase() base {
	b := stringBase()
	b.coerce = func(_ model.Field, value any) (any, string) {
		str, ok := value.(string)
		if !ok {
			return nil, MessageExpectString
		}
		if !emailPattern.MatchString(strings.TrimSpace(str)) {
			return nil, MessageInvalidEmail
		}
		return str, ""
	}
	return b
}

func selectBase() base {
	return base{
		empty: isEmptyString,
		coerce: func(field model.Field, value any) (any, string) {
			str, ok := value.(string)
			if !ok {
				return nil, MessageExpectString
			}
			if len(field.Options) > 0 && !field.HasOption(str) {
				return nil, MessageInvalidOption
			}
			return str, ""
		},
	}
}

func numberBase() base {
	return base{
		empty: isBlank,
		coerce: func(_ model.Field, value any) (any, string) {
			number, ok := toFloat(value)
			if !ok || math.IsNaN(number) || math.IsInf(number, 0) {
				return nil, MessageExpectNumber
			}
			return number, ""
		},
	}
}

func dateBase() base {
	return base{
		empty: func(value any) bool {
			switch v := value.(type) {
			case nil:
				return true
			case time.Time:
				return v.IsZero()
			case *time.Time:
				return v == nil || v.IsZero()
			case string:
				return strings.TrimSpace(v) == ""
			default:
				return false
			}
		},
		coerce: func(_ model.Field, value any) (any, string) {
			parsed, ok := toTime(value)
			if !ok {
				return nil, MessageExpectDate
			}
			return parsed, ""
		},
	}
}

func isEmptyString(value any) bool {
	if value == nil {
		return true
	}
	str, ok := value.(string)
	return ok && str == ""
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	str, ok := value.(string)
	return ok && strings.TrimSpace(str) == ""
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case fmt.Stringer:
		return toFloat(v.String())
	default:
		return 0, false
	}
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case string:
		return ParseDate(v)
	default:
		return time.Time{}, false
	}
}

// ParseDate parses the date and date-time layouts accepted by date fields.
// Layouts without a zone are interpreted in UTC.
func ParseDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
