package site

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

// maxFeedItems caps the feed so one giant content tree cannot produce an
// unbounded document.
const maxFeedItems = 100

// RenderSitemap produces the sitemap XML for the given entries, sorted by
// location, duplicates removed.
func RenderSitemap(entries []SitemapEntry) string {
	sorted := make([]SitemapEntry, 0, len(entries))
	seen := map[string]struct{}{}
	for _, e := range entries {
		if _, ok := seen[e.Loc]; ok {
			continue
		}
		seen[e.Loc] = struct{}{}
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Loc < sorted[j].Loc })

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, e := range sorted {
		b.WriteString("  <url>\n")
		fmt.Fprintf(&b, "    <loc>%s</loc>\n", html.EscapeString(e.Loc))
		if !e.LastMod.IsZero() {
			fmt.Fprintf(&b, "    <lastmod>%s</lastmod>\n", e.LastMod.UTC().Format(time.RFC3339))
		}
		b.WriteString("  </url>\n")
	}
	b.WriteString("</urlset>\n")
	return b.String()
}

// FeedInfo describes the feed channel.
type FeedInfo struct {
	Title       string
	Link        string
	Description string
}

// RenderFeed produces an RSS 2.0 document, newest first, capped at
// maxFeedItems.
func RenderFeed(info FeedInfo, items []FeedItem) string {
	sorted := append([]FeedItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Published.Equal(sorted[j].Published) {
			return sorted[i].Link < sorted[j].Link
		}
		return sorted[i].Published.After(sorted[j].Published)
	})
	if len(sorted) > maxFeedItems {
		sorted = sorted[:maxFeedItems]
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0">` + "\n")
	b.WriteString("  <channel>\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", html.EscapeString(info.Title))
	fmt.Fprintf(&b, "    <link>%s</link>\n", html.EscapeString(info.Link))
	fmt.Fprintf(&b, "    <description>%s</description>\n", html.EscapeString(info.Description))
	for _, item := range sorted {
		b.WriteString("    <item>\n")
		fmt.Fprintf(&b, "      <title>%s</title>\n", html.EscapeString(item.Title))
		fmt.Fprintf(&b, "      <link>%s</link>\n", html.EscapeString(item.Link))
		if item.Description != "" {
			fmt.Fprintf(&b, "      <description>%s</description>\n", html.EscapeString(item.Description))
		}
		if !item.Published.IsZero() {
			fmt.Fprintf(&b, "      <pubDate>%s</pubDate>\n", item.Published.UTC().Format(time.RFC1123Z))
		}
		b.WriteString("    </item>\n")
	}
	b.WriteString("  </channel>\n")
	b.WriteString("</rss>\n")
	return b.String()
}
