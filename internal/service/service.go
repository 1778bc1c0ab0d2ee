// Package service exposes the content index to page-rendering and
// feed-generation consumers and receives invalidation signals from the file
// watcher.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/cache"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/history"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

// ContentService is the façade over the debounced content cache. All read
// APIs return data from one complete snapshot; concurrent Invalidate calls
// never expose a partially built index.
type ContentService struct {
	cache      *cache.Lazy[*content.Index]
	rssDefault bool
	log        *slog.Logger
}

// Option configures a ContentService.
type Option func(*options)

type options struct {
	debounce   time.Duration
	rssDefault bool
	log        *slog.Logger
	rec        metrics.Recorder
	hist       *history.Store
}

// WithDebounce sets the invalidation quiet window.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithRssDefault sets whether pages without an explicit rss field join the feed.
func WithRssDefault(v bool) Option {
	return func(o *options) { o.rssDefault = v }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(o *options) {
		if rec != nil {
			o.rec = rec
		}
	}
}

// WithHistory records every recompute pass in the given store.
func WithHistory(h *history.Store) Option {
	return func(o *options) { o.hist = h }
}

// New wires the scanner into the cache. Nothing is scanned until the first
// read.
func New(scanner *content.Scanner, opts ...Option) *ContentService {
	o := &options{
		debounce:   cache.DefaultDebounce,
		rssDefault: true,
		log:        slog.Default(),
		rec:        metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}

	svc := &ContentService{rssDefault: o.rssDefault, log: o.log}

	factory := func(ctx context.Context) (*content.Index, error) {
		start := time.Now()
		ix, err := scanner.Scan(ctx)

		if o.hist != nil {
			rec := history.Recompute{StartedAt: start, Duration: time.Since(start)}
			if err != nil {
				rec.Error = err.Error()
			} else {
				rec.Pages = len(ix.Pages)
			}
			if herr := o.hist.Record(ctx, rec); herr != nil {
				o.log.Warn("recording recompute history failed", logfields.Error(herr))
			}
		}
		return ix, err
	}

	svc.cache = cache.New(factory,
		cache.WithDebounce[*content.Index](o.debounce),
		cache.WithLogger[*content.Index](o.log),
		cache.WithRecorder[*content.Index](o.rec),
	)
	return svc
}

// Invalidate signals that the content tree changed. It returns immediately;
// the recompute happens after the debounce window settles.
func (s *ContentService) Invalidate() {
	s.cache.Invalidate()
}

// Close releases the cache. Pending recomputes are cancelled.
func (s *ContentService) Close() {
	s.cache.Close()
}

// Index returns the current complete snapshot.
func (s *ContentService) Index(ctx context.Context) (*content.Index, error) {
	return s.cache.Get(ctx)
}

// Pages returns all pages in slug order, drafts included.
func (s *ContentService) Pages(ctx context.Context) ([]*content.ContentPage, error) {
	ix, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Pages, nil
}

// Page looks a page up by its URL slug.
func (s *ContentService) Page(ctx context.Context, slug string) (*content.ContentPage, error) {
	ix, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	page, ok := ix.BySlug[slug]
	if !ok {
		return nil, fmt.Errorf("page %q: not found", slug)
	}
	return page, nil
}

// Tags returns the distinct tag set, sorted by encoded name.
func (s *ContentService) Tags(ctx context.Context) ([]content.Tag, error) {
	ix, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Tags.Tags(), nil
}

// PagesByTag returns the pages carrying the tag with the given encoded name;
// empty when the name is unknown.
func (s *ContentService) PagesByTag(ctx context.Context, encoded string) ([]*content.ContentPage, error) {
	ix, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Tags.Pages(encoded), nil
}

// CrossReferences projects every page for inter-page linking.
func (s *ContentService) CrossReferences(ctx context.Context) ([]content.CrossReference, error) {
	ix, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return ix.CrossReferences(), nil
}

// PagesToGenerate derives the static output units. Draft pages are indexed
// but never generated.
func (s *ContentService) PagesToGenerate(ctx context.Context) ([]site.PageToGenerate, error) {
	ix, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]site.PageToGenerate, 0, len(ix.Pages))
	for _, page := range ix.Pages {
		if page.FrontMatter.Draft {
			continue
		}

		meta := site.NewMetadata()
		meta.LastModified = page.LastModified
		meta.Title = page.FrontMatter.Title
		meta.Description = page.FrontMatter.Description
		meta.SortOrder = page.SortOrder()
		meta.RssItem = s.rssDefault
		if page.FrontMatter.Rss != nil {
			meta.RssItem = *page.FrontMatter.Rss
		}

		out = append(out, site.PageToGenerate{
			Slug:       page.Slug,
			URL:        page.URL,
			OutputFile: outputFileFor(page.Slug),
			Metadata:   &meta,
		})
	}
	return out, nil
}

func outputFileFor(slug string) string {
	if slug == "" {
		return "index.html"
	}
	return path.Join(slug, "index.html")
}
