package surface

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// rootSelectors name the document root, which inside a boundary means the
// boundary itself.
var rootSelectors = []string{":root", "html", "body"}

// scopeStylesheet rewrites selectors so they apply to the boundary only.
// Scoped mode prefixes every selector with scope; shadow mode maps document
// root selectors onto :host.
func scopeStylesheet(src string, mode Mode, scope string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	sheet, err := parser.Parse(src)
	if err != nil {
		return "", fmt.Errorf("surface: parse stylesheet: %w", err)
	}

	target := ":host"
	if mode == ModeScoped {
		target = scope
	}
	sheet.Rules = scopeRules(sheet.Rules, mode, target)
	return sheet.String(), nil
}

func scopeRules(rules []*css.Rule, mode Mode, target string) []*css.Rule {
	out := rules[:0]
	for _, rule := range rules {
		switch rule.Kind {
		case css.QualifiedRule:
			for idx, sel := range rule.Selectors {
				rule.Selectors[idx] = scopeSelector(sel, mode, target)
			}
		case css.AtRule:
			switch rule.Name {
			case "@media", "@supports", "@document":
				rule.Rules = scopeRules(rule.Rules, mode, target)
			case "@import":
				// Imported sheets cannot be rewritten.
				if mode == ModeScoped {
					continue
				}
			}
		}
		out = append(out, rule)
	}
	return out
}

func scopeSelector(sel string, mode Mode, target string) string {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return sel
	}

	rest, rooted := stripRoot(sel)
	if mode == ModeScoped && strings.HasPrefix(rest, ":host") {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ":host"))
		rooted = true
	}

	switch {
	case rooted && rest == "":
		return target
	case rooted:
		if strings.HasPrefix(rest, ">") || strings.HasPrefix(rest, "+") || strings.HasPrefix(rest, "~") {
			return target + " " + rest
		}
		if startsCompound(rest) {
			return target + rest
		}
		return target + " " + rest
	case mode == ModeScoped:
		return target + " " + sel
	default:
		return sel
	}
}

// stripRoot removes leading document-root compounds ("html body p" -> "p").
func stripRoot(sel string) (string, bool) {
	rooted := false
	for {
		matched := false
		for _, root := range rootSelectors {
			if !strings.HasPrefix(sel, root) {
				continue
			}
			tail := sel[len(root):]
			if tail != "" && !isCombinatorStart(tail[0]) && !startsCompound(tail) {
				continue
			}
			sel = strings.TrimSpace(tail)
			sel = strings.TrimSpace(strings.TrimPrefix(sel, ">"))
			rooted = true
			matched = true
			break
		}
		if !matched {
			return sel, rooted
		}
	}
}

func isCombinatorStart(c byte) bool {
	return c == ' ' || c == '>' || c == '\t' || c == '\n'
}

// startsCompound reports whether s continues a compound selector, as in
// "body.dark" or "html[lang]".
func startsCompound(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '.', '#', '[', ':':
		return true
	}
	return false
}

// cssDeclarations renders custom properties in key order.
func cssDeclarations(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value := strings.TrimSpace(vars[key])
		if value == "" || strings.ContainsAny(value, "{};<>") {
			continue
		}
		fmt.Fprintf(&b, "%s: %s;", key, value)
	}
	return b.String()
}

func normalizeVars(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars))
	for key, value := range vars {
		key = strings.TrimSpace(key)
		if key == "" || strings.ContainsAny(key, " {};:<>") {
			continue
		}
		if !strings.HasPrefix(key, "--") {
			key = "--" + key
		}
		out[key] = value
	}
	return out
}
