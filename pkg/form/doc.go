// Package form drives an input form compiled from field definitions. Every
// edit is mirrored into a shared store as soon as it is accepted; validation
// only runs on submit (and re-runs per field once a submit has failed).
package form
