package surface

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// Mode selects the isolation boundary.
type Mode string

const (
	// ModeShadow isolates content inside a declarative shadow root.
	ModeShadow Mode = "shadow"
	// ModeScoped isolates content inside a namespaced element.
	ModeScoped Mode = "scoped"
)

// ScopeAttr is the attribute carrying the namespace of a scoped boundary.
const ScopeAttr = "data-preview-scope"

// HostAttr marks the host element of a preview boundary.
const HostAttr = "data-preview-host"

// ParseMode resolves a mode name, defaulting to ModeShadow.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModeShadow:
		return ModeShadow, nil
	case ModeScoped:
		return ModeScoped, nil
	default:
		return "", fmt.Errorf("surface: unknown mode %q", name)
	}
}

// Frame is one delivery to the page. When Mount is true HTML holds the host
// element with its boundary and must replace the host; otherwise HTML is the
// boundary content only. Text is set by terminal surfaces.
type Frame struct {
	Mount bool   `json:"mount"`
	HTML  string `json:"html,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Presenter receives every rendered markup string.
type Presenter interface {
	Present(markup string) Frame
}

var hostIDPattern = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Surface is an isolation boundary bound to one host element.
type Surface struct {
	mu      sync.Mutex
	hostID  string
	mode    Mode
	vars    map[string]string
	logger  *slog.Logger
	mounted bool
	content string
}

var _ Presenter = (*Surface)(nil)

// New creates a surface for the element with id hostID.
func New(hostID string, opts ...Option) *Surface {
	hostID = hostIDPattern.ReplaceAllString(strings.TrimSpace(hostID), "-")
	if hostID == "" {
		hostID = "preview"
	}
	s := &Surface{
		hostID: hostID,
		mode:   ModeShadow,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// HostID reports the id of the host element.
func (s *Surface) HostID() string {
	return s.hostID
}

// Mode reports the isolation boundary in use.
func (s *Surface) Mode() Mode {
	return s.mode
}

// Present isolates markup and returns the frame to deliver. Only the first
// call (or the first after Reset) mounts the boundary.
func (s *Surface) Present(markup string) Frame {
	content := s.isolate(markup)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = content
	if !s.mounted {
		s.mounted = true
		return Frame{Mount: true, HTML: s.hostLocked()}
	}
	return Frame{HTML: content}
}

// Mount returns the host markup holding the latest content and marks the
// boundary as mounted. Pages embed it on first load.
func (s *Surface) Mount() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = true
	return Frame{Mount: true, HTML: s.hostLocked()}
}

// Content returns the latest isolated content.
func (s *Surface) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Reset forgets the mounted boundary so the next Present mounts again.
func (s *Surface) Reset() {
	s.mu.Lock()
	s.mounted = false
	s.mu.Unlock()
}

func (s *Surface) hostLocked() string {
	id := html.EscapeString(s.hostID)
	var b strings.Builder
	fmt.Fprintf(&b, `<div id="%s" %s>`, id, HostAttr)
	switch s.mode {
	case ModeScoped:
		fmt.Fprintf(&b, `<div %s="%s">%s</div>`, ScopeAttr, id, s.content)
	default:
		fmt.Fprintf(&b, `<template shadowrootmode="open">%s</template>`, s.content)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// scopeSelector is the CSS selector matching the scoped boundary.
func (s *Surface) scopeSelector() string {
	return fmt.Sprintf(`[%s="%s"]`, ScopeAttr, s.hostID)
}

func (s *Surface) isolate(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	rewrite := func(css string) (string, bool) {
		out, err := scopeStylesheet(css, s.mode, s.scopeSelector())
		if err != nil {
			s.logger.Warn("surface: dropping unparsable stylesheet", "host", s.hostID, "error", err)
			if s.mode == ModeScoped {
				return "", true
			}
			return css, false
		}
		return out, true
	}

	content, err := sanitize(markup, cleaner{rewrite: rewrite, scoped: s.mode == ModeScoped})
	if err != nil {
		s.logger.Error("surface: sanitize markup", "host", s.hostID, "error", err)
		return ""
	}
	if content == "" {
		return ""
	}
	if block := s.varsBlock(); block != "" {
		content = block + content
	}
	return content
}

func (s *Surface) varsBlock() string {
	decls := cssDeclarations(s.vars)
	if decls == "" {
		return ""
	}
	target := ":host"
	if s.mode == ModeScoped {
		target = s.scopeSelector()
	}
	return fmt.Sprintf("<style>%s{%s}</style>", target, decls)
}
