// Package model defines the declarative field vocabulary the editor is built
// from. A Field describes one input (name, kind, label, constraints) and a
// Template pairs the markup to preview with the fields that feed it. Both
// decode from the `{html, fields}` JSON payload served by template sources as
// well as YAML and HCL documents (see pkg/source). Field names double as form
// value keys and template variable names, so they are expected to be unique
// within one list; Duplicates reports violations without rejecting them.
package model
