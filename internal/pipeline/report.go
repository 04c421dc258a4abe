package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrBuildFailed is returned by Report.Err when at least one page failed.
var ErrBuildFailed = errors.New("site build failed")

const (
	PageGenerated = "generated"
	PageSkipped   = "skipped"
	PageFailed    = "failed"
)

type ReportSignal struct {
	Code     string `json:"code"`
	Stage    string `json:"stage"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type StageMetric struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	StartedAt  string             `json:"started_at"`
	FinishedAt string             `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// PageMetric records the outcome for one source page.
type PageMetric struct {
	Source        string `json:"source"`
	Dest          string `json:"dest,omitempty"`
	Title         string `json:"title,omitempty"`
	Status        string `json:"status"`
	TitleFallback bool   `json:"title_fallback,omitempty"`
	DurationMS    int64  `json:"duration_ms"`
	Error         string `json:"error,omitempty"`
}

type ReportSummary struct {
	StageCount        int            `json:"stage_count"`
	FailedStages      int            `json:"failed_stages"`
	Generated         int            `json:"generated"`
	Skipped           int            `json:"skipped"`
	Failed            int            `json:"failed"`
	StaticFiles       int            `json:"static_files"`
	Pruned            int            `json:"pruned"`
	ElapsedMS         int64          `json:"elapsed_ms"`
	SignalsBySeverity map[string]int `json:"signals_by_severity"`
}

// Report collects stage timings and per-page outcomes of one build. Page
// metrics and signals may be added from several goroutines.
type Report struct {
	mu      sync.Mutex
	started time.Time

	Version     string         `json:"version"`
	Mode        string         `json:"mode"`
	GeneratedAt string         `json:"generated_at"`
	OutputDir   string         `json:"output_dir"`
	Stages      []StageMetric  `json:"stages"`
	Pages       []PageMetric   `json:"pages,omitempty"`
	Signals     []ReportSignal `json:"signals,omitempty"`
	Summary     ReportSummary  `json:"summary"`
}

type StageHandle struct {
	name    string
	started time.Time
}

func NewReport(mode, outputDir string) *Report {
	now := time.Now().UTC()
	return &Report{
		started:     now,
		Version:     "v1",
		Mode:        mode,
		GeneratedAt: now.Format(time.RFC3339),
		OutputDir:   outputDir,
		Stages:      []StageMetric{},
	}
}

func (r *Report) BeginStage(name string) StageHandle {
	return StageHandle{name: strings.TrimSpace(name), started: time.Now().UTC()}
}

func (r *Report) EndStage(h StageHandle, counters map[string]float64, err error) {
	if r == nil || h.name == "" {
		return
	}
	finished := time.Now().UTC()
	m := StageMetric{
		Name:       h.name,
		Status:     "ok",
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: finished.Format(time.RFC3339Nano),
		DurationMS: finished.Sub(h.started).Milliseconds(),
		Counters:   cleanCounters(counters),
	}
	if err != nil {
		m.Status = "error"
		m.Error = err.Error()
	}
	r.mu.Lock()
	r.Stages = append(r.Stages, m)
	r.mu.Unlock()
}

func (r *Report) AddSignal(code, stage, severity, message string) {
	if r == nil {
		return
	}
	s := ReportSignal{
		Code:     strings.TrimSpace(code),
		Stage:    strings.TrimSpace(stage),
		Severity: strings.ToLower(strings.TrimSpace(severity)),
		Message:  strings.TrimSpace(message),
	}
	if s.Code == "" || s.Stage == "" || s.Severity == "" || s.Message == "" {
		return
	}
	r.mu.Lock()
	r.Signals = append(r.Signals, s)
	r.mu.Unlock()
}

func (r *Report) AddPage(m PageMetric) {
	if r == nil || m.Source == "" {
		return
	}
	r.mu.Lock()
	r.Pages = append(r.Pages, m)
	r.mu.Unlock()
}

// Failures returns the metrics of all failed pages.
func (r *Report) Failures() []PageMetric {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []PageMetric
	for _, p := range r.Pages {
		if p.Status == PageFailed {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of pages with the given status.
func (r *Report) Count(status string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.Pages {
		if p.Status == status {
			n++
		}
	}
	return n
}

// Err summarises failed pages, or returns nil if every page was built.
func (r *Report) Err() error {
	failed := r.Failures()
	if len(failed) == 0 {
		return nil
	}
	lines := make([]string, 0, len(failed))
	for _, p := range failed {
		lines = append(lines, fmt.Sprintf("%s: %s", p.Source, p.Error))
	}
	return fmt.Errorf("%w: %d page(s) failed\n%s", ErrBuildFailed, len(failed), strings.Join(lines, "\n"))
}

// Finalize sorts pages and signals and computes the summary.
func (r *Report) Finalize() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	sort.Slice(r.Pages, func(i, j int) bool { return r.Pages[i].Source < r.Pages[j].Source })
	sort.Slice(r.Signals, func(i, j int) bool {
		pi := signalPriority(r.Signals[i].Severity)
		pj := signalPriority(r.Signals[j].Severity)
		if pi == pj {
			if r.Signals[i].Stage == r.Signals[j].Stage {
				return r.Signals[i].Code < r.Signals[j].Code
			}
			return r.Signals[i].Stage < r.Signals[j].Stage
		}
		return pi > pj
	})

	severityCount := map[string]int{
		"critical": 0,
		"warning":  0,
		"info":     0,
	}
	for _, s := range r.Signals {
		severityCount[s.Severity]++
	}

	summary := ReportSummary{
		StageCount:        len(r.Stages),
		SignalsBySeverity: severityCount,
		StaticFiles:       r.Summary.StaticFiles,
		Pruned:            r.Summary.Pruned,
		ElapsedMS:         time.Since(r.started).Milliseconds(),
	}
	for _, st := range r.Stages {
		if st.Status != "ok" {
			summary.FailedStages++
		}
	}
	for _, p := range r.Pages {
		switch p.Status {
		case PageGenerated:
			summary.Generated++
		case PageSkipped:
			summary.Skipped++
		case PageFailed:
			summary.Failed++
		}
	}
	r.Summary = summary
}

func (r *Report) Save(path string) error {
	if r == nil {
		return nil
	}
	r.Finalize()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	r.mu.Lock()
	data, err := json.MarshalIndent(r, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func cleanCounters(raw map[string]float64) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func signalPriority(severity string) int {
	switch severity {
	case "critical":
		return 3
	case "warning":
		return 2
	default:
		return 1
	}
}
