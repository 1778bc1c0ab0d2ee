package content

import (
	"sort"
	"strings"

	"github.com/goliatone/go-slug"
)

// TagIndex holds the distinct tag set of one snapshot and the per-tag page
// membership, keyed by encoded name.
type TagIndex struct {
	tags    []Tag
	byName  map[string]Tag            // encoded -> tag
	byPages map[string][]*ContentPage // encoded -> pages
}

// BuildTagIndex derives the tag index from pages, which must already be in
// deterministic slug order.
//
// Collision policy: two display names that encode identically share one Tag;
// the display name seen first (page order, then authored tag order) wins and
// is kept for the merged key. This is stable across repeated runs on
// identical input.
func BuildTagIndex(pages []*ContentPage, tagBaseURL string) *TagIndex {
	ti := &TagIndex{
		byName:  make(map[string]Tag),
		byPages: make(map[string][]*ContentPage),
	}

	for _, page := range pages {
		seen := make(map[string]bool, len(page.FrontMatter.Tags))
		for _, name := range page.FrontMatter.Tags {
			encoded := EncodeTagName(name)
			if encoded == "" {
				continue
			}
			if _, ok := ti.byName[encoded]; !ok {
				ti.byName[encoded] = Tag{
					Name:    name,
					Encoded: encoded,
					URL:     joinURL(tagBaseURL, encoded),
				}
			}
			if !seen[encoded] {
				seen[encoded] = true
				ti.byPages[encoded] = append(ti.byPages[encoded], page)
			}
		}
	}

	ti.tags = make([]Tag, 0, len(ti.byName))
	for _, t := range ti.byName {
		ti.tags = append(ti.tags, t)
	}
	sort.Slice(ti.tags, func(i, j int) bool { return ti.tags[i].Encoded < ti.tags[j].Encoded })

	return ti
}

// Tags returns the distinct tags sorted by encoded name.
func (ti *TagIndex) Tags() []Tag {
	return ti.tags
}

// Lookup returns the tag for an encoded name.
func (ti *TagIndex) Lookup(encoded string) (Tag, bool) {
	t, ok := ti.byName[encoded]
	return t, ok
}

// Pages returns the pages listing any display name that maps to encoded,
// or an empty slice when the encoded name is unknown.
func (ti *TagIndex) Pages(encoded string) []*ContentPage {
	pages := ti.byPages[encoded]
	if pages == nil {
		return []*ContentPage{}
	}
	return pages
}

// EncodeTagName converts a display name into its URL-safe lowercase form.
func EncodeTagName(name string) string {
	if encoded, err := slug.Normalize(name); err == nil && encoded != "" {
		return encoded
	}
	return fallbackEncode(name)
}

// fallbackEncode covers names the normalizer rejects outright (e.g. pure
// punctuation): lowercase, non-alphanumerics collapsed to single dashes.
func fallbackEncode(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func joinURL(base, seg string) string {
	base = strings.TrimSuffix(base, "/")
	if base == "" {
		return "/" + seg
	}
	return base + "/" + seg
}
