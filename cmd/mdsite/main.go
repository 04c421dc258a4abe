package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"mdsite/internal/config"
	"mdsite/internal/markdown"
	"mdsite/internal/pipeline"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "mdsite",
		Short:        "Static site generator for a small Markdown dialect",
		SilenceUsage: true,
	}
	configPath string
	cfg        *config.Config

	force      bool
	reportPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "mdsite.yaml", "Path to the site configuration (YAML)")

	buildCmd.Flags().BoolVarP(&force, "force", "f", false, "Regenerate every page, ignoring the page cache")
	buildCmd.Flags().StringVar(&reportPath, "report", "", "Write a JSON build report to this path")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(titleCmd)
}

// setupTracing routes the pipeline and generator tracers to the Go logger.
func setupTracing(level string) error {
	traceLevel := map[string]string{"debug": "Debug", "info": "Info", "error": "Error"}[level]
	if traceLevel == "" {
		traceLevel = "Info"
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":        "go",
		"trace.mdsite.pipeline":  traceLevel,
		"trace.mdsite.generator": traceLevel,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("error configuring tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the site from the content directory into the public directory",
	Args:  cobra.NoArgs,
	// Only build reads the site configuration.
	PreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		return setupTracing(cfg.Log.Level)
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("📂 Content: %s -> %s\n", cfg.Site.ContentDir, cfg.Site.PublicDir)
		if force {
			fmt.Println("🧭 Forced rebuild, ignoring page cache.")
		}

		builder, err := pipeline.NewBuilder(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize builder: %v", err)
		}

		start := time.Now()
		report, err := builder.Run(ctx, force)
		if closeErr := builder.Close(); closeErr != nil {
			log.Printf("Warning: failed to close page cache: %v", closeErr)
		}
		if reportPath != "" {
			if saveErr := report.Save(reportPath); saveErr != nil {
				log.Printf("Warning: failed to save report: %v", saveErr)
			} else {
				fmt.Printf("🧾 Report saved to %s\n", reportPath)
			}
		}

		s := report.Summary
		fmt.Printf("📊 Pages: %d generated, %d unchanged, %d failed. Static files: %d. Cache entries pruned: %d\n",
			s.Generated, s.Skipped, s.Failed, s.StaticFiles, s.Pruned)
		printFailures(report)

		if err != nil {
			if errors.Is(err, pipeline.ErrBuildFailed) {
				pterm.Error.Printfln("Build finished with %d failed page(s) in %v", s.Failed, time.Since(start).Round(time.Millisecond))
				os.Exit(1)
			}
			log.Fatalf("Build failed: %v", err)
		}
		pterm.Success.Printfln("Site built in %v", time.Since(start).Round(time.Millisecond))
	},
}

func printFailures(report *pipeline.Report) {
	failed := report.Failures()
	if len(failed) == 0 {
		return
	}
	data := pterm.TableData{{"Source", "Error"}}
	for _, p := range failed {
		data = append(data, []string{p.Source, p.Error})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		for _, p := range failed {
			fmt.Printf("  -> %s: %s\n", p.Source, p.Error)
		}
	}
}

var renderCmd = &cobra.Command{
	Use:   "render <file.md>",
	Short: "Print the HTML fragment of a single Markdown file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		html, err := markdown.ToHTML(string(data))
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", args[0], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), html)
		return nil
	},
}

var titleCmd = &cobra.Command{
	Use:   "title <file.md>",
	Short: "Print the level-1 heading of a Markdown file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		title, err := markdown.ExtractTitle(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), title)
		return nil
	},
}
