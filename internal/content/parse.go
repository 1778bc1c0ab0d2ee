package content

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// Preprocessor may rewrite raw document text before front-matter extraction.
type Preprocessor func([]byte) []byte

// Parser turns one document's raw text into a ContentPage. It never rejects
// a document: malformed front matter degrades to the zero value with the
// full text kept as body, so a broken file never drops out of the index.
type Parser struct {
	engine *markdown.Engine
	dec    frontmatter.Decoder
	pre    Preprocessor
	log    *slog.Logger
	rec    metrics.Recorder
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithDecoder overrides the front-matter decoder (default YAML).
func WithDecoder(dec frontmatter.Decoder) ParserOption {
	return func(p *Parser) { p.dec = dec }
}

// WithPreprocessor installs a raw-text preprocessor run before extraction.
func WithPreprocessor(pre Preprocessor) ParserOption {
	return func(p *Parser) { p.pre = pre }
}

// WithParserLogger sets the logger for per-file degradation warnings.
func WithParserLogger(log *slog.Logger) ParserOption {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithParserRecorder sets the metrics recorder.
func WithParserRecorder(rec metrics.Recorder) ParserOption {
	return func(p *Parser) {
		if rec != nil {
			p.rec = rec
		}
	}
}

// NewParser creates a Parser sharing the given markdown engine.
func NewParser(engine *markdown.Engine, opts ...ParserOption) *Parser {
	p := &Parser{
		engine: engine,
		log:    slog.Default(),
		rec:    metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse builds a ContentPage from raw document text. slug and url identify
// the page; path is used only for log messages. The outline is computed from
// the stripped body, so the front-matter block never contributes headings.
func (p *Parser) Parse(path, slug, url string, raw []byte, lastMod time.Time) *ContentPage {
	if p.pre != nil {
		raw = p.pre(raw)
	}

	var fm FrontMatter
	body, err := frontmatter.Extract(raw, p.dec, &fm)
	if err != nil {
		// The file stays in the index; only its metadata degrades. A decode
		// failure keeps the stripped body; only an unsplittable document
		// (no closing delimiter) falls back to the full text.
		p.log.Warn("front matter unusable, using defaults",
			logfields.File(path), logfields.Error(err))
		p.rec.IncParseFailures()
		fm = FrontMatter{}
		if body == nil {
			body = raw
		}
	}

	root := p.engine.Parse(body)
	headings := markdown.ExtractHeadings(root, body)

	uid := strings.TrimSpace(fm.UID)
	if uid == "" {
		// Stable across recomputes: derived from the navigation URL.
		uid = uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
	}

	return &ContentPage{
		Slug:         slug,
		URL:          url,
		SourcePath:   path,
		FrontMatter:  fm,
		Body:         string(body),
		Outline:      markdown.BuildOutline(headings),
		UID:          uid,
		LastModified: lastMod,
	}
}
