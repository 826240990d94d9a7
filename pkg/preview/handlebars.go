package preview

import (
	"regexp"
	"strings"
)

var (
	hbComment     = regexp.MustCompile(`\{\{!--[\s\S]*?--\}\}|\{\{![^}]*\}\}`)
	hbTripleStash = regexp.MustCompile(`\{\{\{\s*([^{}]+?)\s*\}\}\}`)
	hbBlockOpen   = regexp.MustCompile(`\{\{#(if|unless|each)\s+([^{}]+?)\s*\}\}`)
	hbBlockClose  = regexp.MustCompile(`\{\{/(if|unless|each)\s*\}\}`)
	hbElse        = regexp.MustCompile(`\{\{\s*else\s*\}\}`)
	hbIndex       = regexp.MustCompile(`\{\{\s*@index\s*\}\}`)
)

// translateHandlebars rewrites the Handlebars subset editors paste in
// (raw output, comments, conditional and loop blocks) into pongo2 syntax.
func translateHandlebars(src string) string {
	if !strings.Contains(src, "{{") {
		return src
	}
	out := hbComment.ReplaceAllString(src, "")
	out = hbTripleStash.ReplaceAllString(out, "{{ $1|safe }}")
	out = hbIndex.ReplaceAllString(out, "{{ forloop.Counter0 }}")
	out = hbElse.ReplaceAllString(out, "{% else %}")
	out = hbBlockOpen.ReplaceAllStringFunc(out, func(tag string) string {
		parts := hbBlockOpen.FindStringSubmatch(tag)
		switch parts[1] {
		case "unless":
			return "{% if not " + parts[2] + " %}"
		case "each":
			return "{% for this in " + parts[2] + " %}"
		default:
			return "{% if " + parts[2] + " %}"
		}
	})
	out = hbBlockClose.ReplaceAllStringFunc(out, func(tag string) string {
		if hbBlockClose.FindStringSubmatch(tag)[1] == "each" {
			return "{% endfor %}"
		}
		return "{% endif %}"
	})
	return out
}
