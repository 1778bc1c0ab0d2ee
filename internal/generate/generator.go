// Package generate drives a full static build: rendered pages, the sitemap,
// and the RSS feed, written under one output root.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/service"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

// pageTemplate is the bare document shell. Styling and layout are the
// consuming site's concern; the generator only guarantees valid standalone
// documents.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
{{- if .Description}}
  <meta name="description" content="{{.Description}}">
{{- end}}
</head>
<body>
<main>
{{.Body}}
</main>
</body>
</html>
`))

type pageData struct {
	Title       string
	Description string
	Body        template.HTML
}

// Stats summarizes one build pass.
type Stats struct {
	Pages    int
	Duration time.Duration
}

// Generator renders the current content snapshot into a static tree.
type Generator struct {
	svc       *service.ContentService
	engine    *markdown.Engine
	outputDir string
	feed      site.FeedInfo
	log       *slog.Logger
}

// New creates a generator writing under outputDir.
func New(svc *service.ContentService, engine *markdown.Engine, outputDir string, feed site.FeedInfo, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{svc: svc, engine: engine, outputDir: outputDir, feed: feed, log: log}
}

// Run performs one complete build from the current snapshot. Individual page
// failures abort the build; a partially written tree is reported, not hidden.
func (g *Generator) Run(ctx context.Context) (Stats, error) {
	start := time.Now()

	targets, err := g.svc.PagesToGenerate(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("resolve pages to generate: %w", err)
	}

	for _, target := range targets {
		if err := g.renderPage(ctx, target); err != nil {
			return Stats{}, err
		}
	}

	entries, items := site.Project(targets)
	if err := g.writeFile("sitemap.xml", []byte(site.RenderSitemap(entries))); err != nil {
		return Stats{}, err
	}
	if err := g.writeFile("feed.xml", []byte(site.RenderFeed(g.feed, items))); err != nil {
		return Stats{}, err
	}

	stats := Stats{Pages: len(targets), Duration: time.Since(start)}
	g.log.Info("site generated",
		logfields.Count(stats.Pages),
		logfields.DurationMS(stats.Duration),
		logfields.Path(g.outputDir))
	return stats, nil
}

func (g *Generator) renderPage(ctx context.Context, target site.PageToGenerate) error {
	page, err := g.svc.Page(ctx, target.Slug)
	if err != nil {
		return fmt.Errorf("load page %s: %w", target.Slug, err)
	}

	// The rewrite base must be site-absolute: output pages live at
	// <slug>/index.html, so a bare-slug base would make browsers resolve
	// rewritten hrefs relative to the page directory, doubling the path.
	body, err := g.engine.RenderPage([]byte(page.Body), "/"+page.Slug)
	if err != nil {
		return fmt.Errorf("render page %s: %w", page.Slug, err)
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, pageData{
		Title:       page.Title(),
		Description: page.FrontMatter.Description,
		Body:        template.HTML(body),
	})
	if err != nil {
		return fmt.Errorf("fill page template %s: %w", page.Slug, err)
	}

	return g.writeFile(target.OutputFile, buf.Bytes())
}

// writeFile writes content under the output root, refusing path traversal
// and creating parent directories as needed.
func (g *Generator) writeFile(relativePath string, content []byte) error {
	if relativePath == "" {
		return errors.New("output path is required")
	}
	cleanRel := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(cleanRel) || strings.HasPrefix(cleanRel, "..") {
		return fmt.Errorf("output path escapes output root: %s", relativePath)
	}

	full := filepath.Join(g.outputDir, cleanRel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create output directory for %s: %w", relativePath, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", relativePath, err)
	}
	return nil
}
