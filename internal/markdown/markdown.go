// Package markdown renders generated replies for display.
package markdown

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ToHTML renders a reply as an HTML fragment. Raw HTML in the reply is
// escaped, so a model echoing tags cannot inject markup into the page.
// Single newlines inside a paragraph become <br>.
func ToHTML(reply string) string {
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.Safelink,
	})
	renderer.Opts.RenderNodeHook = func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
		if text, ok := node.(*ast.Text); ok && entering {
			renderLines(renderer, w, text)
			return ast.GoToNext, true
		}
		return escapeRawHTML(w, node, entering)
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(normalizeNewlines(reply)))
	return string(markdown.Render(doc, renderer))
}

// renderLines writes a text node with its inner newlines as hard breaks.
// The newline closing a list item or paragraph is dropped.
func renderLines(r *html.Renderer, w io.Writer, text *ast.Text) {
	literal := text.Literal
	if ast.GetLastChild(text.Parent) == ast.Node(text) {
		literal = bytes.TrimRight(literal, "\n")
	}
	for i, line := range bytes.Split(literal, []byte("\n")) {
		if i > 0 {
			r.HardBreak(w, &ast.Hardbreak{})
		}
		r.Text(w, &ast.Text{Leaf: ast.Leaf{Literal: line, Parent: text.Parent}})
	}
}

func escapeRawHTML(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	switch n := node.(type) {
	case *ast.HTMLSpan:
		if entering {
			html.EscapeHTML(w, n.Literal)
		}
		return ast.GoToNext, true
	case *ast.HTMLBlock:
		if entering {
			io.WriteString(w, "<p>")
			html.EscapeHTML(w, n.Literal)
			io.WriteString(w, "</p>\n")
		}
		return ast.GoToNext, true
	}
	return ast.GoToNext, false
}

// ToPlainText drops markdown markup, keeping the reply text. Used for the
// clipboard copy of a reply.
func ToPlainText(reply string) string {
	plain := StripHTMLTags(ToHTML(reply))
	return strings.TrimSpace(blankRuns.ReplaceAllString(plain, "\n\n"))
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

func StripHTMLTags(htmlContent string) string {
	var result bytes.Buffer
	inTag := false

	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return unescape(result.String())
}

var entities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&amp;", "&")

func unescape(s string) string { return entities.Replace(s) }

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
