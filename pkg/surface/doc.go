// Package surface hosts rendered preview markup inside an isolation boundary.
//
// A Surface creates its boundary once per host: the first Present returns a
// mount frame containing the host element, the boundary and the content;
// every later Present returns only the content to swap inside the existing
// boundary. Two boundaries are supported:
//
//   - ModeShadow wraps content in a declarative shadow root, so host styles
//     and preview styles cannot see each other.
//   - ModeScoped wraps content in a namespaced element and rewrites every
//     selector of embedded <style> blocks so it only matches inside it.
//
// In both modes scripts, inline event handlers and javascript: URLs are
// removed before the content is delivered. Terminal renders the same markup
// as plain text inside a lipgloss border for terminal sessions.
package surface
