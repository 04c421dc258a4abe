package pipeline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_StagesAndSummary(t *testing.T) {
	r := NewReport("full", "public")

	h := r.BeginStage(" crawl ")
	r.EndStage(h, map[string]float64{"pages": 2, " ": 9}, nil)
	h = r.BeginStage("generate")
	r.EndStage(h, nil, errors.New("boom"))
	r.EndStage(StageHandle{}, nil, nil)

	r.AddPage(PageMetric{Source: "b.md", Status: PageSkipped})
	r.AddPage(PageMetric{Source: "a.md", Status: PageGenerated})
	r.AddPage(PageMetric{Source: "c.md", Status: PageFailed, Error: "bad link"})
	r.AddPage(PageMetric{Status: PageGenerated})

	r.AddSignal("title_fallback", "generate", "Warning", "a.md has no title")
	r.AddSignal("page_failed", "generate", "critical", "c.md: bad link")
	r.AddSignal("", "generate", "info", "dropped")
	r.Finalize()

	require.Len(t, r.Stages, 2)
	assert.Equal(t, "crawl", r.Stages[0].Name)
	assert.Equal(t, map[string]float64{"pages": 2}, r.Stages[0].Counters)
	assert.Equal(t, "error", r.Stages[1].Status)
	assert.Equal(t, "boom", r.Stages[1].Error)

	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, []string{r.Pages[0].Source, r.Pages[1].Source, r.Pages[2].Source})
	require.Len(t, r.Signals, 2)
	assert.Equal(t, "page_failed", r.Signals[0].Code, "critical signals sort first")

	assert.Equal(t, ReportSummary{
		StageCount:        2,
		FailedStages:      1,
		Generated:         1,
		Skipped:           1,
		Failed:            1,
		ElapsedMS:         r.Summary.ElapsedMS,
		SignalsBySeverity: map[string]int{"critical": 1, "warning": 1, "info": 0},
	}, r.Summary)
}

func TestReport_Err(t *testing.T) {
	r := NewReport("full", "public")
	r.AddPage(PageMetric{Source: "ok.md", Status: PageGenerated})
	assert.NoError(t, r.Err())

	r.AddPage(PageMetric{Source: "bad.md", Status: PageFailed, Error: "missing url"})
	err := r.Err()
	assert.ErrorIs(t, err, ErrBuildFailed)
	assert.ErrorContains(t, err, "1 page(s) failed")
	assert.ErrorContains(t, err, "bad.md: missing url")
}

func TestReport_ConcurrentAdds(t *testing.T) {
	r := NewReport("full", "public")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.AddPage(PageMetric{Source: "p.md", Status: PageGenerated})
			r.AddSignal("x", "generate", "info", "m")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Count(PageGenerated))
	assert.Len(t, r.Signals, 50)
}

func TestReport_Save(t *testing.T) {
	r := NewReport("incremental", "public")
	r.AddPage(PageMetric{Source: "a.md", Dest: "a.html", Status: PageGenerated})

	path := filepath.Join(t.TempDir(), "reports", "build.json")
	require.NoError(t, r.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "v1", decoded["version"])
	assert.Equal(t, "incremental", decoded["mode"])
	summary := decoded["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["generated"])

	var nilReport *Report
	assert.NoError(t, nilReport.Save(path))
}
