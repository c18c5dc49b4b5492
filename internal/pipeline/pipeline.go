package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/autodoc/internal/model"
	"github.com/sells-group/autodoc/internal/reader"
	"github.com/sells-group/autodoc/internal/render"
	"github.com/sells-group/autodoc/internal/runlog"
)

// ErrValidation marks a run aborted in strict mode because one or more rows
// failed validation.
var ErrValidation = eris.New("pipeline: validation failed")

// Options tune how a Pipeline treats recoverable input problems.
type Options struct {
	// Strict aborts a run when any row fails validation instead of
	// skipping the bad rows.
	Strict bool
}

// Request describes one document generation run.
type Request struct {
	SpecPath string
	Project  string
	Engineer string
	// ReportID overrides the generated id. Normally left empty.
	ReportID string
}

// Result is the full outcome of one run, success or failure.
type Result struct {
	ReportID       string              `json:"report_id"`
	Project        string              `json:"project"`
	Engineer       string              `json:"engineer,omitempty"`
	Status         model.RunStatus     `json:"status"`
	State          model.RunState      `json:"state"`
	ComponentCount int                 `json:"component_count"`
	SkippedRows    int                 `json:"skipped_rows"`
	TotalCost      decimal.Decimal     `json:"total_cost"`
	OutputPath     string              `json:"output_path,omitempty"`
	GeneratedAt    time.Time           `json:"generated_at"`
	RowErrors      []model.RowError    `json:"row_errors,omitempty"`
	Stages         []model.StageResult `json:"stages"`
}

// Pipeline drives one component spec file through parse, aggregate, render
// and log.
type Pipeline struct {
	store    runlog.Store
	renderer *render.Renderer
	opts     Options
}

// New creates a Pipeline with all dependencies.
func New(store runlog.Store, renderer *render.Renderer, opts Options) *Pipeline {
	return &Pipeline{store: store, renderer: renderer, opts: opts}
}

// Run executes the full pipeline for a single spec file. Every invocation
// appends exactly one run-log entry: the success entry is mandatory (an
// append failure fails the run, without a second attempt), the failure entry
// is best effort.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	now := time.Now().UTC()

	reportID := req.ReportID
	if reportID == "" {
		reportID = model.NewReportID(now)
	}

	log := zap.L().With(
		zap.String("report_id", reportID),
		zap.String("project", req.Project),
		zap.String("file", req.SpecPath),
	)
	log.Info("pipeline: starting run")

	result := &Result{
		ReportID:    reportID,
		Project:     req.Project,
		Engineer:    req.Engineer,
		Status:      model.RunStatusFailure,
		State:       model.StateReceived,
		TotalCost:   decimal.Zero,
		GeneratedAt: now,
	}

	// Stage tracking helper.
	track := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		duration := time.Since(start).Milliseconds()

		stage := model.StageResult{Name: name, Status: model.StageStatusComplete, Duration: duration}
		if err != nil {
			stage.Status = model.StageStatusFailed
			stage.Error = err.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
				zap.Error(err),
			)
		} else {
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
			)
		}
		result.Stages = append(result.Stages, stage)
		return err
	}

	fail := func(runErr error) (*Result, error) {
		result.State = model.StateFailed
		p.logFailure(ctx, log, result)
		return result, runErr
	}

	// ===== Parse =====
	var rows []model.Component
	if err := track("parse", func() error {
		parsed, readErr := reader.Read(req.SpecPath)
		if readErr != nil {
			return readErr
		}
		rows = parsed.Components
		result.RowErrors = parsed.RowErrors
		result.SkippedRows = len(parsed.RowErrors)
		result.ComponentCount = len(rows)

		if p.opts.Strict && len(parsed.RowErrors) > 0 {
			return eris.Wrapf(ErrValidation, "%d row(s) rejected, first: %s",
				len(parsed.RowErrors), parsed.RowErrors[0].Error())
		}
		for _, re := range parsed.RowErrors {
			log.Warn("pipeline: skipping row",
				zap.Int("row", re.Row),
				zap.String("field", re.Field),
				zap.String("reason", re.Reason),
			)
		}
		return nil
	}); err != nil {
		return fail(err)
	}
	result.State = model.StateParsed

	// ===== Aggregate =====
	var agg model.Aggregate
	_ = track("aggregate", func() error {
		agg = Aggregate(rows)
		return nil
	})
	result.TotalCost = agg.TotalCost
	result.State = model.StateAggregated

	// ===== Render =====
	meta := model.RunMetadata{Project: req.Project, Engineer: req.Engineer, ReportID: reportID}
	if err := track("render", func() error {
		path, renderErr := p.renderer.Render(rows, agg, meta, now)
		if renderErr != nil {
			return renderErr
		}
		result.OutputPath = path
		return nil
	}); err != nil {
		return fail(err)
	}
	result.State = model.StateRendered

	// ===== Log =====
	if err := track("log", func() error {
		return p.store.Append(ctx, model.LogEntry{
			ReportID:       reportID,
			Project:        req.Project,
			Engineer:       req.Engineer,
			ComponentCount: result.ComponentCount,
			Status:         model.RunStatusSuccess,
			GeneratedAt:    now,
			OutputPath:     result.OutputPath,
		})
	}); err != nil {
		// This run's single append attempt already happened; returning
		// without a failure entry keeps the log at one entry per run.
		result.State = model.StateFailed
		return result, err
	}
	result.State = model.StateLogged

	result.Status = model.RunStatusSuccess
	result.State = model.StateCompleted

	log.Info("pipeline: run complete",
		zap.Int("components", result.ComponentCount),
		zap.Int("skipped_rows", result.SkippedRows),
		zap.String("total_cost", agg.TotalCost.StringFixed(2)),
		zap.String("output", result.OutputPath),
	)
	return result, nil
}

// logFailure appends the failure entry for a run that died before reaching
// the log stage. The run's own error is already decided, so an append error
// here is only logged.
func (p *Pipeline) logFailure(ctx context.Context, log *zap.Logger, result *Result) {
	entry := model.LogEntry{
		ReportID:       result.ReportID,
		Project:        result.Project,
		Engineer:       result.Engineer,
		ComponentCount: result.ComponentCount,
		Status:         model.RunStatusFailure,
		GeneratedAt:    result.GeneratedAt,
	}
	if err := p.store.Append(ctx, entry); err != nil {
		log.Warn("pipeline: failed to append failure entry", zap.Error(err))
	}
}
