package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
site:
  base_url: "https://example.com/"
content:
  dir: "./content"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "Site", cfg.Site.Title)
	require.Equal(t, "https://example.com", cfg.Site.BaseURL, "trailing slash stripped")
	require.Equal(t, "tags", cfg.Site.TagsPrefix)
	require.Equal(t, "./public", cfg.Output.Dir)
	require.Equal(t, "info", cfg.Logging.Level)
	require.True(t, cfg.RssDefault())
	require.Equal(t, "https://example.com/tags", cfg.TagBaseURL())
}

func TestLoadRequiresContentDir(t *testing.T) {
	path := writeConfig(t, `
site:
  base_url: "https://example.com"
`)

	_, err := Load(path)
	require.ErrorContains(t, err, "content.dir is required")
}

func TestLoadRequiresBaseURL(t *testing.T) {
	path := writeConfig(t, `
content:
  dir: "./content"
`)

	_, err := Load(path)
	require.ErrorContains(t, err, "site.base_url is required")
}

func TestLoadParsesFullConfig(t *testing.T) {
	path := writeConfig(t, `
site:
  title: "Docs"
  base_url: "https://docs.example.com"
  rss_default: false
content:
  dir: "/srv/content"
  debounce: 200ms
rebuild:
  interval: 15m
nats:
  url: "nats://localhost:4222"
history:
  db: "/var/lib/sitegen/history.db"
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "Docs", cfg.Site.Title)
	require.False(t, cfg.RssDefault())
	require.Equal(t, 200*time.Millisecond, cfg.Content.Debounce)
	require.Equal(t, 15*time.Minute, cfg.Rebuild.Interval)
	require.Equal(t, "sitegen.rebuild", cfg.NATS.Subject, "subject defaulted when url set")
	require.Equal(t, "/var/lib/sitegen/history.db", cfg.History.DB)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := writeConfig(t, `
site:
  base_url: "https://example.com"
content:
  dir: "./content"
`)

	t.Setenv("SITEGEN_CONTENT_DIR", "/srv/override")
	t.Setenv("SITEGEN_DEBOUNCE", "75ms")
	t.Setenv("SITEGEN_RSS_DEFAULT", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/srv/override", cfg.Content.Dir)
	require.Equal(t, 75*time.Millisecond, cfg.Content.Debounce)
	require.False(t, cfg.RssDefault())
}

func TestEnvExpansionInYAML(t *testing.T) {
	t.Setenv("SITE_HOST", "expanded.example.com")
	path := writeConfig(t, `
site:
  base_url: "https://${SITE_HOST}"
content:
  dir: "./content"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://expanded.example.com", cfg.Site.BaseURL)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, `
site:
  base_url: "https://example.com"
content:
  dir: "./content"
logging:
  level: loud
`)

	_, err := Load(path)
	require.ErrorContains(t, err, "logging.level")
}

func TestInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitegen.yaml")

	require.NoError(t, Init(path, false))
	require.ErrorContains(t, Init(path, false), "already exists")
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Site", cfg.Site.Title)
}
