package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"loginetl/internal/constants"
	"loginetl/internal/logger"
	"loginetl/internal/sink"
	"loginetl/pkg/errors"
	"loginetl/pkg/logging"
	"loginetl/pkg/metrics"
	"loginetl/pkg/models"
	"loginetl/pkg/tracing"
)

type State string

const (
	StateStart       State = "START"
	StateExtracted   State = "EXTRACTED"
	StateTransformed State = "TRANSFORMED"
	StateLoaded      State = "LOADED"
)

type Extractor interface {
	Fetch(ctx context.Context, maxMessages, waitTimeSeconds int) ([]models.RawMessage, error)
}

type Transformer interface {
	Transform(ctx context.Context, batch []models.RawMessage) ([]models.CanonicalRecord, error)
}

type Loader interface {
	Load(ctx context.Context, records []models.CanonicalRecord) (sink.LoadResult, error)
}

type Options struct {
	MaxMessages     int
	WaitTimeSeconds int
}

// Report describes how far a run got. It is returned for successful and
// halted runs alike.
type Report struct {
	RunID          string `json:"run_id"`
	State          State  `json:"state"`
	ProcessingDate string `json:"processing_date"`
	Extracted      int    `json:"extracted"`
	Transformed    int    `json:"transformed"`
	Skipped        int    `json:"skipped"`
	Inserted       int    `json:"inserted"`
	Failed         int    `json:"failed"`
}

type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	opts        Options
	logger      logger.Logger
	tracer      trace.Tracer
	now         func() time.Time
	newRunID    func() string
}

func New(extractor Extractor, transformer Transformer, loader Loader, opts Options, log logger.Logger) *Pipeline {
	return &Pipeline{
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		opts:        opts,
		logger:      log,
		tracer:      tracing.GetTracer(constants.ServiceName),
		now:         time.Now,
		newRunID:    func() string { return uuid.NewString() },
	}
}

// Run drives one batch through extract, transform and load. A fatal error
// halts the run at the state reached so far. Row-level insert failures
// complete the run but are reported as a partial load.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:          p.newRunID(),
		State:          StateStart,
		ProcessingDate: p.now().Format(constants.DateLayout),
	}

	ctx = logging.WithRunID(ctx, report.RunID)
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("run_id", report.RunID)),
	)
	defer span.End()

	p.logger.InfowCtx(ctx, "Run started",
		"max_messages", p.opts.MaxMessages,
		"wait_time_seconds", p.opts.WaitTimeSeconds,
	)

	var messages []models.RawMessage
	err := p.stage(ctx, constants.StageExtract, func(ctx context.Context) error {
		var err error
		messages, err = p.extractor.Fetch(ctx, p.opts.MaxMessages, p.opts.WaitTimeSeconds)
		return err
	})
	if err != nil {
		return p.halt(ctx, span, report, err)
	}
	report.Extracted = len(messages)
	report.State = StateExtracted

	var records []models.CanonicalRecord
	err = p.stage(ctx, constants.StageTransform, func(ctx context.Context) error {
		var err error
		records, err = p.transformer.Transform(ctx, messages)
		return err
	})
	if err != nil {
		return p.halt(ctx, span, report, err)
	}
	report.Transformed = len(records)
	report.Skipped = report.Extracted - report.Transformed
	if len(records) > 0 {
		report.ProcessingDate = records[0].CreateDate.Format(constants.DateLayout)
	}
	report.State = StateTransformed

	var result sink.LoadResult
	err = p.stage(ctx, constants.StageLoad, func(ctx context.Context) error {
		var err error
		result, err = p.loader.Load(ctx, records)
		return err
	})
	report.Inserted = result.Inserted
	report.Failed = result.Failed
	if err != nil {
		return p.halt(ctx, span, report, err)
	}
	report.State = StateLoaded

	span.SetAttributes(
		attribute.Int("etl.extracted", report.Extracted),
		attribute.Int("etl.inserted", report.Inserted),
		attribute.Int("etl.failed", report.Failed),
	)

	if report.Failed > 0 {
		err := errors.ErrPartialLoad.
			WithDetail("inserted", report.Inserted).
			WithDetail("failed", report.Failed)
		p.logger.WarnwCtx(ctx, "Run finished with failed rows", p.reportFields(report)...)
		metrics.RecordRun("partial", p.now())
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}

	p.logger.InfowCtx(ctx, "Run finished", p.reportFields(report)...)
	metrics.RecordRun("success", p.now())
	span.SetStatus(codes.Ok, "")
	return report, nil
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx = logging.WithStage(ctx, name)
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.ObserveStageDuration(name, status, duration)

	p.logger.DebugwCtx(ctx, "Stage finished",
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
	return err
}

func (p *Pipeline) halt(ctx context.Context, span trace.Span, report *Report, err error) (*Report, error) {
	fields := append(p.reportFields(report), errors.ToErrorFields(err)...)
	p.logger.ErrorwCtx(ctx, "Run halted", fields...)
	metrics.RecordRun("failed", p.now())
	span.SetStatus(codes.Error, err.Error())
	return report, err
}

func (p *Pipeline) reportFields(report *Report) []interface{} {
	return []interface{}{
		"state", report.State,
		"processing_date", report.ProcessingDate,
		"extracted", report.Extracted,
		"transformed", report.Transformed,
		"skipped", report.Skipped,
		"inserted", report.Inserted,
		"failed", report.Failed,
	}
}
