package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mdsite/internal/htmlnode"
	"mdsite/internal/inline"
	"mdsite/internal/markdown"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = "<html><head><title>{{ Title }}</title></head><body>{{ Content }}</body></html>"

func mustTemplate(t *testing.T) Template {
	t.Helper()
	tpl, err := ParseTemplate(testTemplate)
	require.NoError(t, err)
	return tpl
}

func TestParseTemplate(t *testing.T) {
	_, err := ParseTemplate("<title>{{ Title }}</title>")
	assert.ErrorIs(t, err, ErrPlaceholderMissing)
	assert.ErrorContains(t, err, ContentPlaceholder)

	_, err = ParseTemplate("<body>{{ Content }}</body>")
	assert.ErrorIs(t, err, ErrPlaceholderMissing)

	tpl := mustTemplate(t)
	assert.Equal(t, testTemplate, tpl.Text())
}

func executeString(t *testing.T, tpl Template, title string, content htmlnode.Node) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, tpl.Execute(&sb, title, content))
	return sb.String()
}

func TestTemplate_Execute(t *testing.T) {
	body, err := markdown.BuildDocumentTree("C")
	require.NoError(t, err)

	tpl, err := ParseTemplate("{{ Title }}|{{ Content }}|{{ Title }}")
	require.NoError(t, err)
	assert.Equal(t, "T|<div><p>C</p></div>|T", executeString(t, tpl, "T", body))

	// A title containing a placeholder is written as it is.
	assert.Equal(t, "{{ Content }}|<div><p>C</p></div>|{{ Content }}", executeString(t, tpl, "{{ Content }}", body))

	tpl, err = ParseTemplate("<body>{{ Content }}</body><title>{{ Title }}</title>")
	require.NoError(t, err)
	assert.Equal(t, "<body><div><p>C</p></div></body><title>x</title>", executeString(t, tpl, "x", body))
}

func TestGeneratePage(t *testing.T) {
	page, err := GeneratePage("# Hello World\n\nSome *text*.", mustTemplate(t), "fallback")
	require.NoError(t, err)

	assert.Equal(t, "Hello World", page.Title)
	assert.False(t, page.TitleFallback)
	assert.Equal(t, "<div><h1>Hello World</h1><p>Some <i>text</i>.</p></div>", page.Content())
	assert.Equal(t, "<html><head><title>Hello World</title></head><body>"+page.Content()+"</body></html>", page.HTML())
}

func TestGeneratePage_PlaceholderInHeading(t *testing.T) {
	page, err := GeneratePage("# {{ Content }}\n\nBody", mustTemplate(t), "x")
	require.NoError(t, err)
	assert.Equal(t, "<html><head><title>{{ Content }}</title></head><body><div><h1>{{ Content }}</h1><p>Body</p></div></body></html>", page.HTML())
}

func TestGeneratePage_TitleFallback(t *testing.T) {
	page, err := GeneratePage("## Only a subheading", mustTemplate(t), "My Page")
	require.NoError(t, err)
	assert.True(t, page.TitleFallback)
	assert.Equal(t, "My Page", page.Title)
}

func TestGeneratePage_Errors(t *testing.T) {
	_, err := GeneratePage("", mustTemplate(t), "x")
	assert.ErrorIs(t, err, htmlnode.ErrNoChildren)

	_, err = GeneratePage("# T\n\n[broken]()", mustTemplate(t), "x")
	assert.ErrorIs(t, err, inline.ErrMissingURL)
}

func TestGenerateFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdsite.generator")
	defer teardown()

	dir := t.TempDir()
	dest := filepath.Join(dir, "public", "docs", "getting-started.html")

	page, err := GenerateFile(context.Background(), "docs/getting-started.md", []byte("Intro without heading"), dest, mustTemplate(t))
	require.NoError(t, err)
	assert.Equal(t, "Getting Started", page.Title)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, page.HTML(), string(written))
	assert.Equal(t, "<html><head><title>Getting Started</title></head><body><div><p>Intro without heading</p></div></body></html>", string(written))
}

func TestGenerateFile_Errors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdsite.generator")
	defer teardown()

	dir := t.TempDir()
	dest := filepath.Join(dir, "out.html")
	_, err := GenerateFile(context.Background(), "broken.md", []byte("![x]()"), dest, mustTemplate(t))
	assert.ErrorIs(t, err, inline.ErrMissingURL)
	assert.NoFileExists(t, dest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = GenerateFile(ctx, "any.md", []byte("# x"), dest, mustTemplate(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "Getting Started", TitleFromPath("docs/getting-started.md"))
	assert.Equal(t, "Release Notes V2", TitleFromPath("release_notes_v2.md"))
	assert.Equal(t, "Index", TitleFromPath("index.md"))
	assert.Equal(t, "---", TitleFromPath("---.md"))
}
