// Package markdown wraps the goldmark engine used across the pipeline and
// provides the document-structure algorithms built on top of it: heading
// extraction, outline construction, relative-link rewriting, and the tabbed
// code-block transform.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Engine bundles a configured goldmark instance. It is stateless and safe for
// concurrent use.
type Engine struct {
	md goldmark.Markdown
}

// NewEngine builds the shared engine: GFM extensions, auto heading IDs, and
// the tab-grouping transform registered after parsing.
func NewEngine() *Engine {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&tabGroupTransformer{}, 900),
				util.Prioritized(&linkRewriteTransformer{}, 950),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(&tabGroupHTMLRenderer{}, 500),
			),
		),
	)
	return &Engine{md: md}
}

// Parse parses a markdown body (front matter already removed) into an AST.
func (e *Engine) Parse(body []byte) gmast.Node {
	return e.md.Parser().Parse(text.NewReader(body))
}

// Render converts a markdown body to HTML, including the tab-group rewrite.
func (e *Engine) Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPage renders a body with relative links resolved against the page's
// base URL.
func (e *Engine) RenderPage(body []byte, baseURL string) ([]byte, error) {
	pc := parser.NewContext()
	pc.Set(linkBaseKey, baseURL)

	var buf bytes.Buffer
	if err := e.md.Convert(body, &buf, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Heading is one flat, document-ordered heading record. AnchorID is empty
// when the heading carries no id attribute.
type Heading struct {
	Title    string
	Level    int
	AnchorID string
}

// ExtractHeadings walks a parsed document and returns its headings in
// document order.
func ExtractHeadings(root gmast.Node, body []byte) []Heading {
	headings := make([]Heading, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}

		anchor := ""
		if id, found := h.AttributeString("id"); found {
			if b, ok := id.([]byte); ok {
				anchor = string(b)
			} else if s, ok := id.(string); ok {
				anchor = s
			}
		}

		headings = append(headings, Heading{
			Title:    string(h.Text(body)),
			Level:    h.Level,
			AnchorID: anchor,
		})
		return gmast.WalkSkipChildren, nil
	})
	return headings
}
