package crawler

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

// Page is a Markdown source file found under the content root.
type Page struct {
	Source string // path of the .md file
	Rel    string // path relative to the content root
}

// OutputRel returns the page's output path relative to the public dir,
// with the .md extension replaced by .html.
func (p Page) OutputRel() string {
	return strings.TrimSuffix(p.Rel, filepath.Ext(p.Rel)) + ".html"
}

// Crawler scans a content directory for Markdown files.
type Crawler struct {
	ignored []string
}

// NewCrawler creates a new crawler instance. Directories named in ignored are
// skipped in addition to the defaults.
func NewCrawler(ignored ...string) *Crawler {
	return &Crawler{
		ignored: append([]string{".git", "node_modules"}, ignored...),
	}
}

// ScanContent walks the root directory and reports every Markdown file.
// It uses a callback to stream pages; an error from onPage stops the walk.
func (c *Crawler) ScanContent(ctx context.Context, root string, onPage func(Page) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && c.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return onPage(Page{Source: path, Rel: rel})
	})
}

// Collect returns all pages below root in walk order.
func (c *Crawler) Collect(ctx context.Context, root string) ([]Page, error) {
	var pages []Page
	err := c.ScanContent(ctx, root, func(p Page) error {
		pages = append(pages, p)
		return nil
	})
	return pages, err
}

func (c *Crawler) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}
