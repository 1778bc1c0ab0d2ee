// Package content builds the in-memory index of parsed markdown pages: one
// immutable snapshot per recompute pass, replaced wholesale.
package content

import (
	"time"

	"git.home.luguber.info/inful/sitegen/internal/markdown"
)

// FrontMatter is the typed metadata block at the start of a document.
// Unknown keys are preserved in Custom.
type FrontMatter struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Draft       bool           `yaml:"draft"`
	Tags        []string       `yaml:"tags"`
	Order       *int           `yaml:"order"`
	Rss         *bool          `yaml:"rss"` // nil means the configured default
	UID         string         `yaml:"uid"`
	Custom      map[string]any `yaml:",inline"`
}

// ContentPage is one parsed document. Pages are immutable once constructed:
// a recompute pass builds a fresh set and the index reference is swapped
// whole. Identity is the URL slug, unique within one content source.
type ContentPage struct {
	Slug         string // relative route, e.g. "blog/2025/hello"
	URL          string // absolute navigation URL under the site base
	SourcePath   string // absolute filesystem path
	FrontMatter  FrontMatter
	Body         string // original text with the front-matter block removed
	Outline      []*markdown.OutlineEntry
	Tags         []Tag // resolved against the snapshot's tag index
	UID          string
	LastModified time.Time
}

// Title returns the front-matter title, falling back to the slug.
func (p *ContentPage) Title() string {
	if p.FrontMatter.Title != "" {
		return p.FrontMatter.Title
	}
	return p.Slug
}

// SortOrder returns the authored order, or max int for unordered pages
// (sorting them last).
func (p *ContentPage) SortOrder() int {
	if p.FrontMatter.Order != nil {
		return *p.FrontMatter.Order
	}
	return int(^uint(0) >> 1)
}

// Tag is one distinct tag of the current snapshot. Encoded is the URL-safe
// form of the display name; two display names may encode identically, see
// BuildTagIndex for the collision policy.
type Tag struct {
	Name    string // as authored
	Encoded string
	URL     string
}

// CrossReference is a lightweight projection of a page for inter-page
// linking, independent of page type.
type CrossReference struct {
	UID   string
	Title string
	URL   string
}

// Index is one complete content snapshot. It is never mutated after
// construction.
type Index struct {
	Pages  []*ContentPage // sorted by slug
	BySlug map[string]*ContentPage
	Tags   *TagIndex
}

// CrossReferences projects every page into a CrossReference, in slug order.
func (ix *Index) CrossReferences() []CrossReference {
	refs := make([]CrossReference, 0, len(ix.Pages))
	for _, p := range ix.Pages {
		refs = append(refs, CrossReference{UID: p.UID, Title: p.Title(), URL: p.URL})
	}
	return refs
}
