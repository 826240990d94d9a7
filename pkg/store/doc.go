// Package store holds the shared value store of an editing session: the single
// map of current form values written by field widgets and read by the preview
// pipeline. A Store is created when a session starts and closed when it ends;
// it is passed explicitly to every component that needs it rather than living
// in package state. Sessions keeps track of several stores for multi-user
// shells such as the HTTP editor.
package store
