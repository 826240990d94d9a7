// Package editor wires one editing session: a form controller writing into
// a shared store, and a preview pipeline re-rendering the template into an
// isolated surface whenever that store changes. The controller and the
// preview never reference each other; the store is the only link.
package editor
