package generator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mdsite/internal/htmlnode"
	"mdsite/internal/markdown"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	TitlePlaceholder   = "{{ Title }}"
	ContentPlaceholder = "{{ Content }}"
)

var ErrPlaceholderMissing = errors.New("template placeholder missing")

// tracer traces with key 'mdsite.generator'.
func tracer() tracing.Trace {
	return tracing.Select("mdsite.generator")
}

// Template is an HTML page skeleton containing the title and content
// placeholders.
type Template struct {
	text string
}

// ParseTemplate checks that s contains both placeholders.
func ParseTemplate(s string) (Template, error) {
	for _, p := range []string{TitlePlaceholder, ContentPlaceholder} {
		if !strings.Contains(s, p) {
			return Template{}, fmt.Errorf("%w: %s", ErrPlaceholderMissing, p)
		}
	}
	return Template{text: s}, nil
}

// LoadTemplate reads and parses a template file.
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}
	tpl, err := ParseTemplate(string(data))
	if err != nil {
		return Template{}, fmt.Errorf("%s: %w", path, err)
	}
	return tpl, nil
}

// Text returns the raw template text.
func (t Template) Text() string { return t.text }

// Execute writes the template to w with the title substituted and the
// content tree streamed in place of the content placeholder. Both are
// substituted in a single pass, so placeholders inside the title are written
// as they are.
func (t Template) Execute(w io.Writer, title string, content htmlnode.Node) error {
	rest := t.text
	for {
		ti := strings.Index(rest, TitlePlaceholder)
		ci := strings.Index(rest, ContentPlaceholder)
		if ti < 0 && ci < 0 {
			_, err := io.WriteString(w, rest)
			return err
		}
		if ci < 0 || (ti >= 0 && ti < ci) {
			if _, err := io.WriteString(w, rest[:ti]+title); err != nil {
				return err
			}
			rest = rest[ti+len(TitlePlaceholder):]
			continue
		}
		if _, err := io.WriteString(w, rest[:ci]); err != nil {
			return err
		}
		if err := htmlnode.Write(w, content); err != nil {
			return err
		}
		rest = rest[ci+len(ContentPlaceholder):]
	}
}

// Page is a converted document ready to be filled into its template.
type Page struct {
	Title         string
	TitleFallback bool // no level-1 heading; Title was derived from the file name
	Root          htmlnode.Node
	tpl           Template
}

// GeneratePage converts a Markdown document for use with tpl. When the
// document has no level-1 heading, fallbackTitle is used.
func GeneratePage(md string, tpl Template, fallbackTitle string) (Page, error) {
	root, err := markdown.BuildDocumentTree(md)
	if err != nil {
		return Page{}, err
	}
	page := Page{Root: root, tpl: tpl}
	title, err := markdown.ExtractTitle(md)
	switch {
	case errors.Is(err, markdown.ErrTitleNotFound):
		page.Title = fallbackTitle
		page.TitleFallback = true
	case err != nil:
		return Page{}, err
	default:
		page.Title = title
	}
	return page, nil
}

// Content returns the HTML fragment of the document.
func (p Page) Content() string {
	return htmlnode.Render(p.Root)
}

// HTML returns the complete page.
func (p Page) HTML() string {
	var sb strings.Builder
	_ = p.Render(&sb)
	return sb.String()
}

// Render streams the complete page to w.
func (p Page) Render(w io.Writer) error {
	return p.tpl.Execute(w, p.Title, p.Root)
}

// Save writes the page to dest, creating parent directories.
func (p Page) Save(dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := p.Render(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GenerateFile converts md, the contents of the Markdown file src, through
// tpl and writes the result to dest. The fallback title is derived from src.
func GenerateFile(ctx context.Context, src string, md []byte, dest string, tpl Template) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	tracer().Debugf("generating page from %s to %s", src, dest)
	page, err := GeneratePage(string(md), tpl, TitleFromPath(src))
	if err != nil {
		return Page{}, err
	}
	if page.TitleFallback {
		tracer().Infof("%s has no level-1 heading, using title %q", src, page.Title)
	}
	if err := page.Save(dest); err != nil {
		return Page{}, err
	}
	return page, nil
}

// TitleFromPath derives a title from a file name: "getting-started.md"
// becomes "Getting Started".
func TitleFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(stem))
	if len(words) == 0 {
		return stem
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
