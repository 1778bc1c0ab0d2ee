package markdown

// OutlineEntry is one node of the in-page navigation forest. Children always
// have a strictly greater heading level than their parent; order follows the
// document.
type OutlineEntry struct {
	Title    string
	AnchorID string
	Children []*OutlineEntry
}

// BuildOutline converts flat, document-ordered heading records into a forest.
//
// The builder keeps a stack of the current ancestor chain. A heading that
// skips levels (level 1 followed by level 3) nests as a direct child of the
// nearest shallower ancestor; no synthetic intermediate node is created.
// Headings without an anchor id cannot be navigation targets and are dropped
// entirely — a dropped heading is not a stack barrier, so its would-be
// children nest under the nearest surviving ancestor. Duplicate anchor ids
// are not deduplicated.
func BuildOutline(headings []Heading) []*OutlineEntry {
	type frame struct {
		entry *OutlineEntry
		level int
	}

	roots := make([]*OutlineEntry, 0)
	stack := make([]frame, 0, 6)

	for _, h := range headings {
		if h.AnchorID == "" {
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}

		entry := &OutlineEntry{Title: h.Title, AnchorID: h.AnchorID}
		if len(stack) == 0 {
			roots = append(roots, entry)
		} else {
			parent := stack[len(stack)-1].entry
			parent.Children = append(parent.Children, entry)
		}
		stack = append(stack, frame{entry: entry, level: h.Level})
	}

	return roots
}
