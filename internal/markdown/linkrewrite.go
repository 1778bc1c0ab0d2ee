package markdown

import (
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// linkBaseKey carries the page's base URL through the parser context so the
// transformer can resolve relative destinations against the right page.
var linkBaseKey = parser.NewContextKey()

// linkRewriteTransformer rewrites relative link and image destinations
// against the page base URL stored in the parser context. Without a base URL
// it leaves the document untouched.
type linkRewriteTransformer struct{}

func (t *linkRewriteTransformer) Transform(doc *gmast.Document, reader text.Reader, pc parser.Context) {
	v := pc.Get(linkBaseKey)
	if v == nil {
		return
	}
	base, ok := v.(string)
	if !ok {
		return
	}

	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Link:
			node.Destination = []byte(RewriteURL(string(node.Destination), base))
		case *gmast.Image:
			node.Destination = []byte(RewriteURL(string(node.Destination), base))
		}
		return gmast.WalkContinue, nil
	})
}
