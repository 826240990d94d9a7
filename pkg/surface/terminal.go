package surface

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"
)

var (
	blockBreakPattern = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|tr|section|article|header|footer|blockquote|pre)\s*>`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
	spaceRunPattern   = regexp.MustCompile(`[ \t]+`)
)

// Terminal renders markup as text inside a lipgloss frame. The frame style
// is built once; Present only replaces its content.
type Terminal struct {
	mu      sync.Mutex
	policy  *bluemonday.Policy
	frame   lipgloss.Style
	title   string
	mounted bool
	text    string
}

var _ Presenter = (*Terminal)(nil)

// NewTerminal creates a terminal surface with the given title and content
// width. A non-positive width lets the content decide.
func NewTerminal(title string, width int) *Terminal {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1)
	if width > 0 {
		frame = frame.Width(width)
	}
	return &Terminal{
		policy: bluemonday.StrictPolicy(),
		frame:  frame,
		title:  title,
	}
}

// Present converts markup to text and returns the framed view.
func (t *Terminal) Present(markup string) Frame {
	text := t.PlainText(markup)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.text = text
	mount := !t.mounted
	t.mounted = true
	return Frame{Mount: mount, Text: t.viewLocked()}
}

// View returns the framed view of the latest content.
func (t *Terminal) View() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

// PlainText strips every tag from markup, turning block boundaries into
// line breaks.
func (t *Terminal) PlainText(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	broken := blockBreakPattern.ReplaceAllStringFunc(markup, func(tag string) string {
		return tag + "\n"
	})
	text := html.UnescapeString(t.policy.Sanitize(broken))

	lines := strings.Split(text, "\n")
	for idx, line := range lines {
		lines[idx] = strings.TrimSpace(spaceRunPattern.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func (t *Terminal) viewLocked() string {
	body := t.text
	if t.title != "" {
		title := lipgloss.NewStyle().Bold(true).Render(t.title)
		if body == "" {
			body = title
		} else {
			body = title + "\n\n" + body
		}
	}
	return t.frame.Render(body)
}
