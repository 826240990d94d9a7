// Package live is a bubbletea terminal editor: every keystroke is applied
// to the form controller (and therefore the shared store) immediately, and
// the preview pane is redrawn from the terminal surface after each change.
package live
