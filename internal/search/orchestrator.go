package search

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/occ-vacantes/internal/clock/system"
	"github.com/JakeFAU/occ-vacantes/internal/id/uuid"
	"github.com/JakeFAU/occ-vacantes/internal/jobs"
	"github.com/JakeFAU/occ-vacantes/internal/metrics"
	"github.com/JakeFAU/occ-vacantes/internal/telemetry"
)

const recordTimeout = 5 * time.Second

// Record is the audit summary of one orchestrated search.
type Record struct {
	ID          string
	Term        string
	Environment Environment
	Outcome     Outcome
	StartedAt   time.Time
	Duration    time.Duration
}

// Recorder persists search audit rows.
type Recorder interface {
	RecordSearch(ctx context.Context, rec Record) error
}

// Orchestrator handles search requests. It holds no per-request state and is
// safe for concurrent use.
type Orchestrator struct {
	runner   Runner
	env      Environment
	recorder Recorder
	ids      jobs.IDGenerator
	clock    jobs.Clock
	logger   *zap.Logger
}

// NewOrchestrator constructs an Orchestrator. recorder may be nil; nil ids
// and clock fall back to UUIDv7 and the system clock.
func NewOrchestrator(
	runner Runner,
	env Environment,
	recorder Recorder,
	ids jobs.IDGenerator,
	clock jobs.Clock,
	logger *zap.Logger,
) *Orchestrator {
	if ids == nil {
		ids = uuid.New()
	}
	if clock == nil {
		clock = system.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		runner:   runner,
		env:      env,
		recorder: recorder,
		ids:      ids,
		clock:    clock,
		logger:   logger,
	}
}

// Environment returns the environment the orchestrator was built for.
func (o *Orchestrator) Environment() Environment {
	return o.env
}

// Handle runs a single search attempt. It never returns an error: every
// failure is folded into the Outcome.
func (o *Orchestrator) Handle(ctx context.Context, req Request) Outcome {
	term := strings.TrimSpace(req.SearchTerm)
	if term == "" {
		o.logger.Info("search rejected", zap.Error(ErrSearchTermRequired))
		return invalidTerm()
	}

	ctx, span := telemetry.Tracer().Start(ctx, "search",
		trace.WithAttributes(
			attribute.String("search.term", term),
			attribute.String("search.environment", o.env.String()),
		),
	)
	defer span.End()
	logger := o.logger.With(zap.String("trace_id", telemetry.TraceID(ctx)))

	started := o.clock.Now()
	logger.Info("search started",
		zap.String("term", term),
		zap.Stringer("environment", o.env),
	)

	listings, err := o.runner.Run(ctx, term, o.env)
	outcome := interpret(listings, err)
	elapsed := o.clock.Now().Sub(started)

	fields := []zap.Field{
		zap.String("term", term),
		zap.Stringer("outcome", outcome.Kind),
		zap.Duration("elapsed", elapsed),
	}
	span.SetAttributes(attribute.String("search.outcome", outcome.Kind.String()))
	switch outcome.Kind {
	case KindSuccess:
		span.SetAttributes(attribute.Int("search.listings", outcome.Count))
		logger.Info("search completed", append(fields, zap.Int("listings", outcome.Count))...)
	case KindEmpty:
		logger.Info("search completed without listings", fields...)
	default:
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.CategoryLabel())
		logger.Error("search failed", append(fields,
			zap.Stringer("category", outcome.Category),
			zap.Error(outcome.Err),
		)...)
	}

	metrics.ObserveSearch(outcome.Kind.String(), outcome.CategoryLabel(), elapsed)
	o.record(ctx, term, outcome, started, elapsed)
	return outcome
}

func interpret(listings []jobs.Listing, err error) Outcome {
	if err != nil {
		return Failure(err)
	}
	if len(listings) == 0 {
		return Empty()
	}
	return Success(len(listings))
}

func (o *Orchestrator) record(ctx context.Context, term string, outcome Outcome, started time.Time, elapsed time.Duration) {
	if o.recorder == nil {
		return
	}
	id, err := o.ids.NewID()
	if err != nil {
		o.logger.Warn("search audit skipped", zap.Error(err))
		return
	}
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	rec := Record{
		ID:          id,
		Term:        term,
		Environment: o.env,
		Outcome:     outcome,
		StartedAt:   started,
		Duration:    elapsed,
	}
	if err := o.recorder.RecordSearch(recCtx, rec); err != nil {
		o.logger.Warn("search audit failed", zap.String("search_id", id), zap.Error(err))
	}
}
