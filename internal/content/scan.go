package content

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// markdownExtensions lists file suffixes treated as content documents.
var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// Scanner walks the content root and assembles a complete Index. One Scan
// call is one recompute pass; the result is never mutated afterwards.
type Scanner struct {
	root       string // content root directory
	baseURL    string // site base path, no trailing slash
	tagBaseURL string // navigation URL prefix for tag pages
	parser     *Parser
	lastMod    *LastModResolver
	log        *slog.Logger
	rec        metrics.Recorder
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithScannerLogger sets the logger.
func WithScannerLogger(log *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}

// WithScannerRecorder sets the metrics recorder.
func WithScannerRecorder(rec metrics.Recorder) ScannerOption {
	return func(s *Scanner) {
		if rec != nil {
			s.rec = rec
		}
	}
}

// WithLastModResolver overrides the default resolver (git commit date with
// mtime fallback).
func WithLastModResolver(r *LastModResolver) ScannerOption {
	return func(s *Scanner) { s.lastMod = r }
}

// NewScanner creates a Scanner rooted at root. baseURL is the site base path
// and tagBaseURL the prefix for tag navigation URLs.
func NewScanner(root, baseURL, tagBaseURL string, parser *Parser, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		root:       root,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tagBaseURL: tagBaseURL,
		parser:     parser,
		log:        slog.Default(),
		rec:        metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lastMod == nil {
		s.lastMod = NewLastModResolver(root, s.log)
	}
	return s
}

// Scan performs one full recompute pass: walk the tree, parse every document,
// build the tag index, and resolve per-page tags. Per-file errors degrade
// that file and never abort the pass.
func (s *Scanner) Scan(ctx context.Context) (*Index, error) {
	pages := make([]*ContentPage, 0, 64)
	bySlug := make(map[string]*ContentPage)

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == s.root {
				return fmt.Errorf("scan content root %s: %w", s.root, walkErr)
			}
			s.log.Warn("skipping unreadable entry", logfields.Path(path), logfields.Error(walkErr))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !markdownExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			// The file may have been deleted mid-scan; the next invalidation
			// will pick the change up.
			s.log.Warn("cannot read content file", logfields.File(path), logfields.Error(err))
			return nil
		}

		slug, err := s.slugFor(path)
		if err != nil {
			s.log.Warn("cannot derive slug", logfields.File(path), logfields.Error(err))
			return nil
		}
		if prev, dup := bySlug[slug]; dup {
			s.log.Warn("duplicate slug, keeping first occurrence",
				logfields.Slug(slug), logfields.File(path), slog.String("kept", prev.SourcePath))
			return nil
		}

		info, _ := d.Info()
		page := s.parser.Parse(path, slug, s.urlFor(slug), raw, s.lastMod.Resolve(path, info))
		pages = append(pages, page)
		bySlug[slug] = page
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })

	tags := BuildTagIndex(pages, s.tagBaseURL)
	for _, page := range pages {
		page.Tags = resolveTags(page.FrontMatter.Tags, tags)
	}

	s.rec.SetIndexPages(len(pages))
	s.log.Debug("content scan complete", logfields.Count(len(pages)))

	return &Index{Pages: pages, BySlug: bySlug, Tags: tags}, nil
}

// slugFor derives the page identity from its path relative to the content
// root: extension stripped, slashes normalized, a trailing "index" folded
// into its directory.
func (s *Scanner) slugFor(path string) (string, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", err
	}
	slug := strings.TrimSuffix(rel, filepath.Ext(rel))
	slug = filepath.ToSlash(slug)
	if slug == "index" {
		return "", nil
	}
	return strings.TrimSuffix(slug, "/index"), nil
}

func (s *Scanner) urlFor(slug string) string {
	if slug == "" {
		return s.baseURL + "/"
	}
	return s.baseURL + "/" + slug
}

// resolveTags maps authored display names to the snapshot's Tag objects,
// preserving authored order and dropping duplicates that encode identically.
func resolveTags(names []string, ti *TagIndex) []Tag {
	if len(names) == 0 {
		return nil
	}
	out := make([]Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		encoded := EncodeTagName(name)
		if encoded == "" || seen[encoded] {
			continue
		}
		if t, ok := ti.Lookup(encoded); ok {
			seen[encoded] = true
			out = append(out, t)
		}
	}
	return out
}
