package surface

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// droppedElements never reach the boundary.
var droppedElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Object: true,
	atom.Embed:  true,
	atom.Base:   true,
}

var urlAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"xlink:href": true,
	"background": true,
	"poster":     true,
}

// styleRewriter rewrites the text of a <style> element. keep is false when
// the original text should stay untouched.
type styleRewriter func(css string) (out string, keep bool)

// cleaner scrubs parsed fragments. scoped drops <link> elements, since a
// scoped boundary shares the host document's stylesheets.
type cleaner struct {
	rewrite styleRewriter
	scoped  bool
}

// sanitize parses markup as a body fragment, removes script vectors and
// passes every <style> body through rewrite.
func sanitize(markup string, c cleaner) (string, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return "", fmt.Errorf("surface: parse fragment: %w", err)
	}

	var buf bytes.Buffer
	for _, node := range nodes {
		if !c.clean(node) {
			continue
		}
		if err := html.Render(&buf, node); err != nil {
			return "", fmt.Errorf("surface: render fragment: %w", err)
		}
	}
	return buf.String(), nil
}

// clean scrubs node in place and reports whether it should be kept.
func (c cleaner) clean(node *html.Node) bool {
	switch node.Type {
	case html.CommentNode:
		return false
	case html.ElementNode:
		if droppedElements[node.DataAtom] {
			return false
		}
		if c.scoped && node.DataAtom == atom.Link {
			return false
		}
		node.Attr = cleanAttrs(node.Attr)
		if node.DataAtom == atom.Style && c.rewrite != nil {
			rewriteStyle(node, c.rewrite)
			return true
		}
	}

	for child := node.FirstChild; child != nil; {
		next := child.NextSibling
		if !c.clean(child) {
			node.RemoveChild(child)
		}
		child = next
	}
	return true
}

func rewriteStyle(node *html.Node, rewrite styleRewriter) {
	var css strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			css.WriteString(child.Data)
		}
	}
	out, keep := rewrite(css.String())
	if !keep {
		return
	}
	for node.FirstChild != nil {
		node.RemoveChild(node.FirstChild)
	}
	if out != "" {
		node.AppendChild(&html.Node{Type: html.TextNode, Data: out})
	}
}

func cleanAttrs(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, attr := range attrs {
		key := strings.ToLower(attr.Key)
		if attr.Namespace != "" {
			key = strings.ToLower(attr.Namespace) + ":" + key
		}
		if strings.HasPrefix(key, "on") || key == "srcdoc" {
			continue
		}
		if urlAttributes[key] && scriptURL(attr.Val) {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// scriptURL reports whether raw uses a scheme that executes code. Browsers
// ignore embedded whitespace and control characters in the scheme.
func scriptURL(raw string) bool {
	var b strings.Builder
	for _, r := range raw {
		if r <= ' ' {
			continue
		}
		b.WriteRune(r)
		if b.Len() > len("javascript:") {
			break
		}
	}
	scheme := strings.ToLower(b.String())
	return strings.HasPrefix(scheme, "javascript:") || strings.HasPrefix(scheme, "vbscript:")
}
