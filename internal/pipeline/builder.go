package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mdsite/internal/config"
	"mdsite/internal/crawler"
	"mdsite/internal/generator"
	"mdsite/internal/storage"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/errgroup"
)

// tracer traces with key 'mdsite.pipeline'.
func tracer() tracing.Trace {
	return tracing.Select("mdsite.pipeline")
}

// Builder builds a static site from a content directory.
type Builder struct {
	Config *config.Config
	Store  storage.PageCache // nil disables incremental builds
}

// NewBuilder creates a builder and opens the page cache if one is configured.
func NewBuilder(cfg *config.Config) (*Builder, error) {
	b := &Builder{Config: cfg}
	if cfg.Build.CacheDB == "" {
		return b, nil
	}
	store, err := storage.NewSQLiteStore(cfg.Build.CacheDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open page cache: %w", err)
	}
	b.Store = store
	return b, nil
}

func (b *Builder) Close() error {
	if b.Store == nil {
		return nil
	}
	return b.Store.Close()
}

type buildContext struct {
	tpl          generator.Template
	templateHash string
	force        bool
	report       *Report
}

// Run executes all build stages. With force set, the page cache is ignored
// and every page is regenerated. The report is returned even on error.
func (b *Builder) Run(ctx context.Context, force bool) (*Report, error) {
	cfg := b.Config
	mode := "incremental"
	if force || b.Store == nil {
		mode = "full"
	}
	report := NewReport(mode, cfg.Site.PublicDir)
	defer report.Finalize()

	if err := b.prepareStage(report); err != nil {
		return report, err
	}

	tpl, err := b.templateStage(report)
	if err != nil {
		return report, err
	}

	pages, err := b.crawlStage(ctx, report)
	if err != nil {
		return report, err
	}

	bc := &buildContext{
		tpl:          tpl,
		templateHash: storage.Hash([]byte(tpl.Text())),
		force:        force,
		report:       report,
	}
	if err := b.generateStage(ctx, bc, pages); err != nil {
		return report, err
	}

	if err := b.pruneStage(ctx, report, pages); err != nil {
		return report, err
	}

	return report, report.Err()
}

func (b *Builder) prepareStage(report *Report) error {
	cfg := b.Config
	h := report.BeginStage("prepare")
	if cfg.Build.Clean {
		tracer().Infof("cleaning %s", cfg.Site.PublicDir)
		if err := os.RemoveAll(cfg.Site.PublicDir); err != nil {
			report.EndStage(h, nil, err)
			return fmt.Errorf("failed to clean public dir: %w", err)
		}
	}
	if err := os.MkdirAll(cfg.Site.PublicDir, 0755); err != nil {
		report.EndStage(h, nil, err)
		return err
	}
	n, err := CopyStatic(cfg.Site.StaticDir, cfg.Site.PublicDir)
	report.Summary.StaticFiles = n
	report.EndStage(h, map[string]float64{"static_files": float64(n)}, err)
	if err != nil {
		return fmt.Errorf("failed to copy static files: %w", err)
	}
	return nil
}

func (b *Builder) templateStage(report *Report) (generator.Template, error) {
	h := report.BeginStage("template")
	tpl, err := generator.LoadTemplate(b.Config.Site.Template)
	report.EndStage(h, nil, err)
	if err != nil {
		return generator.Template{}, fmt.Errorf("failed to load template: %w", err)
	}
	return tpl, nil
}

func (b *Builder) crawlStage(ctx context.Context, report *Report) ([]crawler.Page, error) {
	h := report.BeginStage("crawl")
	pages, err := crawler.NewCrawler().Collect(ctx, b.Config.Site.ContentDir)
	report.EndStage(h, map[string]float64{"pages": float64(len(pages))}, err)
	if err != nil {
		return nil, fmt.Errorf("failed to scan content: %w", err)
	}
	tracer().Infof("found %d page(s) in %s", len(pages), b.Config.Site.ContentDir)
	return pages, nil
}

func (b *Builder) generateStage(ctx context.Context, bc *buildContext, pages []crawler.Page) error {
	h := bc.report.BeginStage("generate")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Config.Build.Workers)
	for _, p := range pages {
		p := p // per-iteration copy (go directive < 1.22)
		g.Go(func() error {
			m := b.buildPage(gctx, bc, p)
			bc.report.AddPage(m)
			if m.Status == PageFailed {
				bc.report.AddSignal("page_failed", "generate", "critical", m.Source+": "+m.Error)
				if !b.Config.Build.ContinueOnError {
					return fmt.Errorf("%s: %s", m.Source, m.Error)
				}
			}
			if m.TitleFallback {
				bc.report.AddSignal("title_fallback", "generate", "warning",
					fmt.Sprintf("%s has no level-1 heading, titled %q", m.Source, m.Title))
			}
			return gctx.Err()
		})
	}
	err := g.Wait()

	bc.report.EndStage(h, map[string]float64{
		"generated": float64(bc.report.Count(PageGenerated)),
		"skipped":   float64(bc.report.Count(PageSkipped)),
		"failed":    float64(bc.report.Count(PageFailed)),
	}, err)
	return err
}

func (b *Builder) buildPage(ctx context.Context, bc *buildContext, p crawler.Page) PageMetric {
	start := time.Now()
	key := filepath.ToSlash(p.Rel)
	outRel := filepath.ToSlash(p.OutputRel())
	dest := filepath.Join(b.Config.Site.PublicDir, p.OutputRel())
	m := PageMetric{Source: key, Dest: outRel}

	fail := func(err error) PageMetric {
		tracer().Errorf("%s: %v", key, err)
		m.Status = PageFailed
		m.Error = err.Error()
		m.DurationMS = time.Since(start).Milliseconds()
		return m
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	data, err := os.ReadFile(p.Source)
	if err != nil {
		return fail(err)
	}
	contentHash := storage.Hash(data)

	if b.Store != nil && !bc.force {
		rec, err := b.Store.Lookup(ctx, key)
		switch {
		case err == nil && rec.Fresh(contentHash, bc.templateHash) && exists(dest):
			tracer().Debugf("%s is up to date", key)
			m.Status = PageSkipped
			m.Title = rec.Title
			m.DurationMS = time.Since(start).Milliseconds()
			return m
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			tracer().Errorf("cache lookup for %s failed: %v", key, err)
		}
	}

	page, err := generator.GenerateFile(ctx, p.Rel, data, dest, bc.tpl)
	if err != nil {
		return fail(err)
	}

	if b.Store != nil {
		err := b.Store.SavePage(ctx, storage.PageRecord{
			Source:       key,
			ContentHash:  contentHash,
			TemplateHash: bc.templateHash,
			Dest:         outRel,
			Title:        page.Title,
		})
		if err != nil {
			tracer().Errorf("failed to cache %s: %v", key, err)
		}
	}

	tracer().Debugf("generated %s", outRel)
	m.Status = PageGenerated
	m.Title = page.Title
	m.TitleFallback = page.TitleFallback
	m.DurationMS = time.Since(start).Milliseconds()
	return m
}

func (b *Builder) pruneStage(ctx context.Context, report *Report, pages []crawler.Page) error {
	if b.Store == nil {
		return nil
	}
	h := report.BeginStage("prune")
	keep := make([]string, 0, len(pages))
	for _, p := range pages {
		keep = append(keep, filepath.ToSlash(p.Rel))
	}
	n, err := b.Store.Prune(ctx, keep)
	report.Summary.Pruned = n
	report.EndStage(h, map[string]float64{"pruned": float64(n)}, err)
	if err != nil {
		return fmt.Errorf("failed to prune page cache: %w", err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
