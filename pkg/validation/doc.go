// Package validation compiles field definitions into a runtime validation
// schema. Each field kind maps to a rule constructor held in a lookup table
// with a plain-string fallback, required fields add an emptiness check, and
// optional fields accept absence. Compile is pure: the same definitions always
// produce schemas with the same accept/reject behaviour.
package validation
