package generate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/service"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

func writeContent(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

func newTestGenerator(t *testing.T, contentDir, outputDir string) *Generator {
	t.Helper()
	engine := markdown.NewEngine()
	parser := content.NewParser(engine)
	scanner := content.NewScanner(contentDir, "https://example.com", "https://example.com/tags", parser)
	svc := service.New(scanner)
	t.Cleanup(svc.Close)
	return New(svc, engine, outputDir, site.FeedInfo{Title: "Example", Link: "https://example.com"}, nil)
}

func TestRunWritesPagesSitemapAndFeed(t *testing.T) {
	contentDir := t.TempDir()
	outputDir := t.TempDir()

	writeContent(t, contentDir, "index.md", "---\ntitle: Home\n---\n\n# Welcome\n")
	writeContent(t, contentDir, "blog/first.md", "---\ntitle: First Post\ndescription: Opening entry\n---\n\nHello.\n")

	gen := newTestGenerator(t, contentDir, outputDir)
	stats, err := gen.Run(t.Context())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Pages)

	home, err := os.ReadFile(filepath.Join(outputDir, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(home), "<title>Home</title>")
	require.Contains(t, string(home), "Welcome")

	post, err := os.ReadFile(filepath.Join(outputDir, "blog", "first", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(post), "<title>First Post</title>")
	require.Contains(t, string(post), `<meta name="description" content="Opening entry">`)

	sitemap, err := os.ReadFile(filepath.Join(outputDir, "sitemap.xml"))
	require.NoError(t, err)
	require.Contains(t, string(sitemap), "<loc>https://example.com/</loc>")
	require.Contains(t, string(sitemap), "<loc>https://example.com/blog/first</loc>")

	feed, err := os.ReadFile(filepath.Join(outputDir, "feed.xml"))
	require.NoError(t, err)
	require.Contains(t, string(feed), "<title>First Post</title>")
}

func TestRunSkipsDrafts(t *testing.T) {
	contentDir := t.TempDir()
	outputDir := t.TempDir()

	writeContent(t, contentDir, "ready.md", "---\ntitle: Ready\n---\n\nShip it.\n")
	writeContent(t, contentDir, "wip.md", "---\ntitle: WIP\ndraft: true\n---\n\nNot yet.\n")

	gen := newTestGenerator(t, contentDir, outputDir)
	stats, err := gen.Run(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Pages)

	_, err = os.Stat(filepath.Join(outputDir, "wip", "index.html"))
	require.True(t, os.IsNotExist(err))
}

func TestRunRewritesRelativeLinks(t *testing.T) {
	contentDir := t.TempDir()
	outputDir := t.TempDir()

	writeContent(t, contentDir, "blog/2025/post.md",
		"---\ntitle: Post\n---\n\n[pic](../images/pic.png)\n")

	gen := newTestGenerator(t, contentDir, outputDir)
	_, err := gen.Run(t.Context())
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(outputDir, "blog", "2025", "post", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(out), `href="/blog/2025/images/pic.png"`)
}

func TestRunPageToPageLinksSurviveVerification(t *testing.T) {
	contentDir := t.TempDir()
	outputDir := t.TempDir()

	writeContent(t, contentDir, "docs/a.md", "---\ntitle: A\n---\n\n[b](../b)\n")
	writeContent(t, contentDir, "docs/b.md", "---\ntitle: B\n---\n\nTarget.\n")

	gen := newTestGenerator(t, contentDir, outputDir)
	_, err := gen.Run(t.Context())
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(outputDir, "docs", "a", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(out), `href="/docs/b"`)

	broken, err := VerifyLinks(outputDir)
	require.NoError(t, err)
	require.Empty(t, broken)
}

func TestWriteFileRejectsPathTraversal(t *testing.T) {
	gen := &Generator{outputDir: t.TempDir()}
	require.Error(t, gen.writeFile("../escape.html", []byte("x")))
	require.Error(t, gen.writeFile("", []byte("x")))
}

func TestVerifyLinksReportsMissingTargets(t *testing.T) {
	outputDir := t.TempDir()

	write := func(rel, body string) {
		full := filepath.Join(outputDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}

	write("index.html", `<html><body>
		<a href="/docs/">Docs</a>
		<a href="/missing/">Missing</a>
		<a href="https://example.org/external">External</a>
		<a href="#section">Anchor</a>
	</body></html>`)
	write("docs/index.html", `<html><body><img src="/assets/logo.png"></body></html>`)

	broken, err := VerifyLinks(outputDir)
	require.NoError(t, err)
	require.Len(t, broken, 2)

	urls := []string{broken[0].URL, broken[1].URL}
	require.Contains(t, urls, "/missing/")
	require.Contains(t, urls, "/assets/logo.png")
}

func TestVerifyLinksResolvesRelativePaths(t *testing.T) {
	outputDir := t.TempDir()

	write := func(rel, body string) {
		full := filepath.Join(outputDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}

	write("blog/index.html", `<a href="../about/">About</a>`)
	write("about/index.html", `<p>hi</p>`)

	broken, err := VerifyLinks(outputDir)
	require.NoError(t, err)
	require.Empty(t, broken)
}
