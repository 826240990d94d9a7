package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm        ChromeClass = "fp-form"
	ClassFields      ChromeClass = "fp-fields"
	ClassField       ChromeClass = "fp-field"
	ClassActions     ChromeClass = "fp-actions"
	ClassErrors      ChromeClass = "fp-form-errors"
	ClassFieldErrors ChromeClass = "fp-field-errors"
	ClassDescription ChromeClass = "fp-description"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"form":    string(ClassForm),
		"fields":  string(ClassFields),
		"actions": string(ClassActions),
		"errors":  string(ClassErrors),
	}
}
