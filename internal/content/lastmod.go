package content

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// LastModResolver resolves a page's last-modified timestamp. When the content
// root is inside a git work tree the last commit touching the file wins;
// otherwise (or when the file is untracked) the filesystem mtime is used.
type LastModResolver struct {
	repo *git.Repository
	root string // worktree root, empty when not a git repository
	log  *slog.Logger
}

// NewLastModResolver probes contentDir for an enclosing git repository. A
// missing repository is not an error; the resolver degrades to mtime.
func NewLastModResolver(contentDir string, log *slog.Logger) *LastModResolver {
	if log == nil {
		log = slog.Default()
	}
	r := &LastModResolver{log: log}

	repo, err := git.PlainOpenWithOptions(contentDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		log.Debug("content dir not in a git work tree, using file mtimes", logfields.Path(contentDir))
		return r
	}
	wt, err := repo.Worktree()
	if err != nil {
		return r
	}
	r.repo = repo
	r.root = wt.Filesystem.Root()
	return r
}

// Resolve returns the last-modified time for the file at path.
func (r *LastModResolver) Resolve(path string, info fs.FileInfo) time.Time {
	if r.repo != nil {
		if t, ok := r.commitTime(path); ok {
			return t
		}
	}
	if info != nil {
		return info.ModTime()
	}
	return time.Time{}
}

func (r *LastModResolver) commitTime(path string) (time.Time, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return time.Time{}, false
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return time.Time{}, false
	}
	rel = filepath.ToSlash(rel)

	iter, err := r.repo.Log(&git.LogOptions{
		FileName: &rel,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		r.log.Debug("git log failed", logfields.File(rel), logfields.Error(err))
		return time.Time{}, false
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		// Untracked or freshly added file.
		return time.Time{}, false
	}
	return commit.Author.When, true
}
