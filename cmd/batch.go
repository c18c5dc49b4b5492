package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/autodoc/internal/pipeline"
	"github.com/sells-group/autodoc/internal/render"
)

var (
	batchDir         string
	batchConcurrency int
	batchProject     string
	batchEngineer    string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate reports for every spec in a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		specs, err := collectSpecs(batchDir)
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}

		p := pipeline.New(st, render.New(cfg.Output.Dir), pipeline.Options{Strict: cfg.Pipeline.Strict()})

		return processBatch(ctx, batchRequests(specs, batchProject, batchEngineer), concurrency, p.Run)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory of component specs (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel runs (default from config)")
	batchCmd.Flags().StringVar(&batchProject, "project", "", "project name for every report (default derived from each file name)")
	batchCmd.Flags().StringVar(&batchEngineer, "engineer", "", "engineer name stamped on the reports")
	_ = batchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(batchCmd)
}

// collectSpecs lists the .csv and .xlsx files directly under dir, sorted by
// name.
func collectSpecs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "read spec dir %s", dir)
	}

	var specs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx":
			specs = append(specs, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(specs)
	return specs, nil
}

// projectFromFile derives a project name from a spec file name:
// "substation_a.csv" becomes "substation_a".
func projectFromFile(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// batchRequests pairs each spec file with its run metadata. An explicit
// project applies to every file; otherwise the project is derived from the
// file name.
func batchRequests(specs []string, project, engineer string) []pipeline.Request {
	reqs := make([]pipeline.Request, len(specs))
	for i, spec := range specs {
		p := project
		if p == "" {
			p = projectFromFile(spec)
		}
		reqs[i] = pipeline.Request{SpecPath: spec, Project: p, Engineer: engineer}
	}
	return reqs
}

// runFunc is the callback signature for generating one report.
type runFunc func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)

// processBatch generates one report per request concurrently. An individual
// failure is logged and counted but does not abort the batch.
func processBatch(ctx context.Context, reqs []pipeline.Request, concurrency int, run runFunc) error {
	if len(reqs) == 0 {
		zap.L().Info("no spec files found")
		return nil
	}

	zap.L().Info("processing batch",
		zap.Int("specs", len(reqs)),
		zap.Int("concurrency", concurrency),
	)

	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, req := range reqs {
		g.Go(func() error {
			log := zap.L().With(zap.String("file", req.SpecPath))

			result, err := run(gctx, req)
			if err != nil {
				failed.Add(1)
				log.Error("report generation failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("report generated",
				zap.String("report_id", result.ReportID),
				zap.Int("components", result.ComponentCount),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
