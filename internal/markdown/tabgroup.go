package markdown

import (
	"fmt"
	stdhtml "html"
	"strings"
	"sync/atomic"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TabGroup is a custom block node holding a run of consecutive fenced code
// blocks that render as one tabbed container.
type TabGroup struct {
	gmast.BaseBlock
}

// KindTabGroup is the node kind for TabGroup.
var KindTabGroup = gmast.NewNodeKind("TabGroup")

// Kind implements ast.Node.
func (n *TabGroup) Kind() gmast.NodeKind { return KindTabGroup }

// Dump implements ast.Node.
func (n *TabGroup) Dump(source []byte, level int) {
	gmast.DumpHelper(n, source, level, nil, nil)
}

// tabGroupSeq issues unique group identifiers. Rendering may run from
// multiple goroutines, so the counter is atomic.
var tabGroupSeq atomic.Uint64

// tabGroupTransformer replaces every maximal run of two or more consecutive
// top-level fenced code blocks with a single TabGroup containing the run in
// original order. Lone fenced blocks and non-code blocks pass through
// unchanged.
type tabGroupTransformer struct{}

func (t *tabGroupTransformer) Transform(doc *gmast.Document, reader text.Reader, pc parser.Context) {
	var runs [][]gmast.Node
	var run []gmast.Node

	flush := func() {
		if len(run) >= 2 {
			runs = append(runs, run)
		}
		run = nil
	}

	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		if _, ok := child.(*gmast.FencedCodeBlock); ok {
			run = append(run, child)
			continue
		}
		flush()
	}
	flush()

	for _, blocks := range runs {
		group := &TabGroup{}
		doc.InsertBefore(doc, blocks[0], group)
		for _, b := range blocks {
			doc.RemoveChild(doc, b)
			group.AppendChild(group, b)
		}
	}
}

// tabGroupHTMLRenderer renders a TabGroup as a radio-button tab strip: one
// selectable tab per contained code block, first tab active.
type tabGroupHTMLRenderer struct{}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *tabGroupHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindTabGroup, r.renderTabGroup)
}

func (r *tabGroupHTMLRenderer) renderTabGroup(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}

	groupID := tabGroupSeq.Add(1)
	groupName := fmt.Sprintf("tabgroup-%d", groupID)

	_, _ = w.WriteString(`<div class="code-tabs">` + "\n")

	idx := 0
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		fcb, ok := child.(*gmast.FencedCodeBlock)
		if !ok {
			continue
		}
		tabID := fmt.Sprintf("%s-tab-%d", groupName, idx)
		checked := ""
		if idx == 0 {
			checked = ` checked="checked"`
		}
		_, _ = fmt.Fprintf(w, `<input type="radio" name="%s" id="%s"%s/>`+"\n", groupName, tabID, checked)
		_, _ = fmt.Fprintf(w, `<label for="%s">%s</label>`+"\n", tabID, stdhtml.EscapeString(tabLabel(fcb, source)))
		_, _ = w.WriteString(`<div class="code-tab">` + "\n")
		writeFencedCode(w, fcb, source)
		_, _ = w.WriteString("</div>\n")
		idx++
	}

	_, _ = w.WriteString("</div>\n")
	return gmast.WalkSkipChildren, nil
}

var labelCaser = cases.Title(language.English)

// tabLabel picks the tab caption: an explicit title attribute on the fence
// info line wins, else the title-cased language, else a generic fallback.
func tabLabel(fcb *gmast.FencedCodeBlock, source []byte) string {
	if fcb.Info != nil {
		info := string(fcb.Info.Segment.Value(source))
		if title := parseFenceTitle(info); title != "" {
			return title
		}
	}
	if lang := fcb.Language(source); len(lang) > 0 {
		return labelCaser.String(string(lang))
	}
	return "Code"
}

// parseFenceTitle extracts `title="..."` from a fence info line such as
// `go title="Server"`.
func parseFenceTitle(info string) string {
	const marker = `title="`
	start := strings.Index(info, marker)
	if start < 0 {
		return ""
	}
	rest := info[start+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

func writeFencedCode(w util.BufWriter, fcb *gmast.FencedCodeBlock, source []byte) {
	lang := string(fcb.Language(source))
	if lang != "" {
		_, _ = fmt.Fprintf(w, `<pre><code class="language-%s">`, stdhtml.EscapeString(lang))
	} else {
		_, _ = w.WriteString("<pre><code>")
	}
	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		_, _ = w.WriteString(stdhtml.EscapeString(string(seg.Value(source))))
	}
	_, _ = w.WriteString("</code></pre>\n")
}
