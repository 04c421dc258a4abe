package crawler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("# x"), 0644))
}

func TestCrawler_ScanContent(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "index.md")
	touch(t, root, "blog/first.md")
	touch(t, root, "blog/deep/second.MD")
	touch(t, root, "blog/notes.txt")
	touch(t, root, ".hidden/secret.md")
	touch(t, root, "node_modules/pkg/readme.md")
	touch(t, root, "drafts/wip.md")

	c := NewCrawler("drafts")
	pages, err := c.Collect(context.Background(), root)
	require.NoError(t, err)

	var rels []string
	for _, p := range pages {
		rels = append(rels, filepath.ToSlash(p.Rel))
		assert.Equal(t, filepath.Join(root, p.Rel), p.Source)
	}
	assert.ElementsMatch(t, []string{"index.md", "blog/first.md", "blog/deep/second.MD"}, rels)
}

func TestPage_OutputRel(t *testing.T) {
	assert.Equal(t, "index.html", Page{Rel: "index.md"}.OutputRel())
	assert.Equal(t, filepath.Join("blog", "post.html"), Page{Rel: filepath.Join("blog", "post.md")}.OutputRel())
}

func TestCrawler_CallbackErrorStopsWalk(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.md")
	touch(t, root, "b.md")

	stop := errors.New("stop")
	calls := 0
	err := NewCrawler().ScanContent(context.Background(), root, func(Page) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestCrawler_Cancelled(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.md")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCrawler().Collect(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCrawler_MissingRoot(t *testing.T) {
	_, err := NewCrawler().Collect(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
