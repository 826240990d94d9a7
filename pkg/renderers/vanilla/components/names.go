package components

// Canonical component names used by the vanilla renderer and default registry.
// They match the widget identifiers resolved by the widgets registry.
const (
	NameInput    = "input"
	NameTextarea = "textarea"
	NameSelect   = "select"
	NameDate     = "date"
	NameDatetime = "datetime"
)
