package generate

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// BrokenLink is one internal link whose target does not exist in the
// generated tree.
type BrokenLink struct {
	SourceFile string // HTML file containing the link, relative to the output root
	URL        string // link destination as written
}

// VerifyLinks walks the generated tree and checks that every internal link
// resolves to a generated file. External links are not contacted.
func VerifyLinks(outputDir string) ([]BrokenLink, error) {
	var broken []BrokenLink

	err := filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}

		rel, err := filepath.Rel(outputDir, p)
		if err != nil {
			return err
		}

		file, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", rel, err)
		}
		links, err := extractLinks(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("parse %s: %w", rel, err)
		}

		for _, link := range links {
			if !isInternal(link) {
				continue
			}
			if !targetExists(outputDir, filepath.ToSlash(rel), link) {
				broken = append(broken, BrokenLink{SourceFile: filepath.ToSlash(rel), URL: link})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify links in %s: %w", outputDir, err)
	}
	return broken, nil
}

// extractLinks collects href and src attributes from anchor and image
// elements.
func extractLinks(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href := getAttr(n, "href"); href != "" {
					links = append(links, href)
				}
			case "img":
				if src := getAttr(n, "src"); src != "" {
					links = append(links, src)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func isInternal(link string) bool {
	if link == "" || strings.HasPrefix(link, "#") {
		return false
	}
	for _, prefix := range []string{"http://", "https://", "mailto:", "ftp://", "tel:", "//"} {
		if strings.HasPrefix(link, prefix) {
			return false
		}
	}
	return true
}

// targetExists resolves link relative to the source file's directory and
// checks the output tree for the target, accepting both file and
// directory-with-index forms.
func targetExists(outputDir, sourceRel, link string) bool {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	if link == "" {
		return true
	}

	var resolved string
	if strings.HasPrefix(link, "/") {
		resolved = strings.TrimPrefix(link, "/")
	} else {
		resolved = path.Join(path.Dir(sourceRel), link)
	}
	resolved = path.Clean(resolved)
	if resolved == "." {
		resolved = ""
	}
	if strings.HasPrefix(resolved, "..") {
		return false
	}

	candidates := []string{
		resolved,
		path.Join(resolved, "index.html"),
	}
	if resolved == "" {
		candidates = []string{"index.html"}
	}
	for _, c := range candidates {
		if info, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(c))); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
