package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestScanner(t *testing.T, root string) *Scanner {
	t.Helper()
	return NewScanner(root, "/docs", "/docs/tags", newTestParser())
}

func TestScanner_BuildsCompleteIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "intro.md", "---\ntitle: Intro\ntags: [basics]\n---\n# Intro\n")
	writeFile(t, root, "guide/setup.md", "---\ntitle: Setup\ntags: [basics, install]\n---\n# Setup\n")
	writeFile(t, root, "notes.txt", "not content")

	ix, err := newTestScanner(t, root).Scan(t.Context())
	require.NoError(t, err)

	require.Len(t, ix.Pages, 2)
	// Sorted by slug.
	require.Equal(t, "guide/setup", ix.Pages[0].Slug)
	require.Equal(t, "intro", ix.Pages[1].Slug)
	require.Equal(t, "/docs/guide/setup", ix.Pages[0].URL)

	require.Same(t, ix.Pages[1], ix.BySlug["intro"])

	require.Len(t, ix.Tags.Tags(), 2)
	require.Len(t, ix.Tags.Pages("basics"), 2)

	// Resolved tag objects on the page, in authored order.
	setup := ix.BySlug["guide/setup"]
	require.Len(t, setup.Tags, 2)
	require.Equal(t, "basics", setup.Tags[0].Encoded)
	require.Equal(t, "install", setup.Tags[1].Encoded)
	require.Equal(t, "/docs/tags/install", setup.Tags[1].URL)
}

func TestScanner_IndexFilesFoldIntoDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home\n")
	writeFile(t, root, "blog/index.md", "# Blog\n")

	ix, err := newTestScanner(t, root).Scan(t.Context())
	require.NoError(t, err)

	require.Len(t, ix.Pages, 2)
	require.Contains(t, ix.BySlug, "")
	require.Contains(t, ix.BySlug, "blog")
	require.Equal(t, "/docs/", ix.BySlug[""].URL)
	require.Equal(t, "/docs/blog", ix.BySlug["blog"].URL)
}

func TestScanner_HiddenDirectoriesSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "visible.md", "# V\n")
	writeFile(t, root, ".drafts/hidden.md", "# H\n")

	ix, err := newTestScanner(t, root).Scan(t.Context())
	require.NoError(t, err)
	require.Len(t, ix.Pages, 1)
	require.Equal(t, "visible", ix.Pages[0].Slug)
}

func TestScanner_MalformedFileStaysInIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok.md", "---\ntitle: OK\n---\nbody\n")
	writeFile(t, root, "broken.md", "---\ntitle: [oops\n---\nbody\n")

	ix, err := newTestScanner(t, root).Scan(t.Context())
	require.NoError(t, err)
	require.Len(t, ix.Pages, 2)
	require.Equal(t, "", ix.BySlug["broken"].FrontMatter.Title)
	require.Equal(t, "body\n", ix.BySlug["broken"].Body)
	require.Equal(t, "OK", ix.BySlug["ok"].FrontMatter.Title)
}

func TestScanner_MissingRootFails(t *testing.T) {
	s := newTestScanner(t, filepath.Join(t.TempDir(), "missing"))
	_, err := s.Scan(t.Context())
	require.Error(t, err)
}

func TestScanner_LastModifiedFromMtime(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "page.md", "# P\n")

	ix, err := newTestScanner(t, root).Scan(t.Context())
	require.NoError(t, err)
	require.False(t, ix.Pages[0].LastModified.IsZero())
}
