// Package site defines the unit of static output shared by all content
// sources and derives the sitemap and feed documents from it.
package site

import (
	"math"
	"time"
)

// Metadata describes one generatable page for sitemap/feed purposes.
type Metadata struct {
	LastModified time.Time
	Title        string
	Description  string
	RssItem      bool
	SortOrder    int
}

// NewMetadata returns Metadata with defaults applied: included in the feed,
// unordered (sorts last).
func NewMetadata() Metadata {
	return Metadata{RssItem: true, SortOrder: math.MaxInt}
}

// PageToGenerate is one unit of static output, produced by any content
// source and consumed by the build driver and the sitemap/feed projector.
type PageToGenerate struct {
	Slug       string // canonical page slug, empty for the site root
	URL        string // absolute site URL
	OutputFile string // path of the generated file, relative to the output root
	Metadata   *Metadata
}

// SitemapEntry is one sitemap URL record. LastMod is zero for pages without
// metadata; they are listed URL-only.
type SitemapEntry struct {
	Loc     string
	LastMod time.Time
}

// FeedItem is one feed entry.
type FeedItem struct {
	Title       string
	Description string
	Link        string
	Published   time.Time
}

// Project derives the sitemap and feed views from the aggregate page list.
//
// Every page with a URL appears in the sitemap. A page joins the feed only
// when it has metadata with the RSS flag set and a non-empty title; pages
// failing either condition are silently excluded from the feed.
func Project(pages []PageToGenerate) ([]SitemapEntry, []FeedItem) {
	entries := make([]SitemapEntry, 0, len(pages))
	items := make([]FeedItem, 0, len(pages))

	for _, page := range pages {
		if page.URL == "" {
			continue
		}

		entry := SitemapEntry{Loc: page.URL}
		if page.Metadata != nil {
			entry.LastMod = page.Metadata.LastModified
		}
		entries = append(entries, entry)

		if page.Metadata == nil || !page.Metadata.RssItem || page.Metadata.Title == "" {
			continue
		}
		items = append(items, FeedItem{
			Title:       page.Metadata.Title,
			Description: page.Metadata.Description,
			Link:        page.URL,
			Published:   page.Metadata.LastModified,
		})
	}

	return entries, items
}
