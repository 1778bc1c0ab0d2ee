package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/generate"
	"git.home.luguber.info/inful/sitegen/internal/history"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/service"
	"git.home.luguber.info/inful/sitegen/internal/site"
	"git.home.luguber.info/inful/sitegen/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitegen.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output      string `short:"o" help:"Output directory, overrides output.dir from config"`
		VerifyLinks bool   `help:"Check internal links in the generated tree after building"`
	} `cmd:"" help:"Generate the site once and exit"`

	Watch struct {
		Output      string `short:"o" help:"Output directory, overrides output.dir from config"`
		MetricsAddr string `help:"Serve Prometheus metrics on this address (e.g. :9090)"`
	} `cmd:"" help:"Watch the content tree and regenerate on change"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	kctx := kong.Parse(&CLI)

	if kctx.Command() == "init" {
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
		slog.Info("Configuration written", logfields.Path(CLI.Config))
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", logfields.Error(err))
		os.Exit(1)
	}
	setupLogging(cfg)

	switch kctx.Command() {
	case "build":
		if err := runBuild(cfg); err != nil {
			slog.Error("Build failed", logfields.Error(err))
			os.Exit(1)
		}
	case "watch":
		if err := runWatch(cfg); err != nil {
			slog.Error("Watch failed", logfields.Error(err))
			os.Exit(1)
		}
	}
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if CLI.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newGenerator wires the full pipeline for one output directory.
func newGenerator(cfg *config.Config, outputDir string, rec metrics.Recorder) (*generate.Generator, *service.ContentService, func(), error) {
	engine := markdown.NewEngine()
	parser := content.NewParser(engine, content.WithParserRecorder(rec))
	scanner := content.NewScanner(cfg.Content.Dir, cfg.Site.BaseURL, cfg.TagBaseURL(), parser,
		content.WithScannerRecorder(rec))

	opts := []service.Option{
		service.WithRssDefault(cfg.RssDefault()),
		service.WithRecorder(rec),
	}
	if cfg.Content.Debounce > 0 {
		opts = append(opts, service.WithDebounce(cfg.Content.Debounce))
	}

	cleanup := func() {}
	if cfg.History.DB != "" {
		store, err := history.Open(cfg.History.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, service.WithHistory(store))
		cleanup = func() {
			if err := store.Close(); err != nil {
				slog.Warn("Closing history store failed", logfields.Error(err))
			}
		}
	}

	svc := service.New(scanner, opts...)
	feed := site.FeedInfo{
		Title:       cfg.Site.Title,
		Link:        cfg.Site.BaseURL,
		Description: cfg.Site.Description,
	}
	gen := generate.New(svc, engine, outputDir, feed, slog.Default())
	return gen, svc, cleanup, nil
}

func outputDirFor(cfg *config.Config, override string) string {
	if override != "" {
		return override
	}
	return cfg.Output.Dir
}

func runBuild(cfg *config.Config) error {
	outputDir := outputDirFor(cfg, CLI.Build.Output)

	gen, svc, cleanup, err := newGenerator(cfg, outputDir, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer cleanup()
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := gen.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("Build complete", logfields.Count(stats.Pages), logfields.DurationMS(stats.Duration))

	if CLI.Build.VerifyLinks {
		broken, err := generate.VerifyLinks(outputDir)
		if err != nil {
			return err
		}
		for _, link := range broken {
			slog.Warn("Broken internal link",
				logfields.File(link.SourceFile),
				logfields.URL(link.URL))
		}
		if len(broken) > 0 {
			slog.Warn("Link verification found problems", logfields.Count(len(broken)))
		} else {
			slog.Info("All internal links resolve")
		}
	}
	return nil
}

func runWatch(cfg *config.Config) error {
	outputDir := outputDirFor(cfg, CLI.Watch.Output)

	registry := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(registry)

	gen, svc, cleanup, err := newGenerator(cfg, outputDir, rec)
	if err != nil {
		return err
	}
	defer cleanup()
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := watch.NewWatcher(cfg.Content.Dir, svc.Invalidate, slog.Default())
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	if cfg.Rebuild.Interval > 0 {
		scheduler, err := watch.NewScheduler(cfg.Rebuild.Interval, svc.Invalidate, slog.Default())
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				slog.Warn("Stopping scheduler failed", logfields.Error(err))
			}
		}()
	}

	if cfg.NATS.URL != "" {
		trigger, err := watch.NewNATSTrigger(cfg.NATS.URL, cfg.NATS.Subject, svc.Invalidate, slog.Default())
		if err != nil {
			return err
		}
		defer func() {
			if err := trigger.Close(); err != nil {
				slog.Warn("Closing rebuild trigger failed", logfields.Error(err))
			}
		}()
	}

	if CLI.Watch.MetricsAddr != "" {
		go serveMetrics(CLI.Watch.MetricsAddr, registry)
	}

	return regenerateLoop(ctx, gen, svc)
}

// regenerateLoop rebuilds the output tree whenever a new content snapshot
// appears. The cache debounces change bursts; this loop only polls snapshot
// identity.
func regenerateLoop(ctx context.Context, gen *generate.Generator, svc *service.ContentService) error {
	var lastIndex *content.Index

	rebuild := func() {
		ix, err := svc.Index(ctx)
		if err != nil {
			slog.Error("Content scan failed", logfields.Error(err))
			return
		}
		if ix == lastIndex {
			return
		}
		stats, err := gen.Run(ctx)
		if err != nil {
			slog.Error("Regeneration failed", logfields.Error(err))
			return
		}
		lastIndex = ix
		slog.Info("Site regenerated", logfields.Count(stats.Pages), logfields.DurationMS(stats.Duration))
	}

	rebuild()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down")
			return nil
		case <-ticker.C:
			rebuild()
		}
	}
}

func serveMetrics(addr string, registry *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(registry))
	slog.Info("Serving metrics", logfields.URL(addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Metrics server failed", logfields.Error(err))
	}
}
