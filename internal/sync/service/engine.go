// Package service drives sync runs: it walks every module, pushes PENDING
// records to the remote endpoint in batches and marks accepted ones SYNCED.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	rmodels "fieldsync/internal/records/models"
	"fieldsync/internal/sync/metrics"
	"fieldsync/internal/sync/models"
	"fieldsync/internal/sync/ports"
	"fieldsync/pkg/platform/audit"
	"fieldsync/pkg/requestcontext"
)

const (
	defaultBatchSize = 25
	// settleTimeout bounds local store work that must finish after the run
	// context is done.
	settleTimeout = 5 * time.Second
)

// Failure reasons that do not come from the remote endpoint.
const (
	ReasonListFailed = "list_failed"
	ReasonNoOutcome  = "no_outcome"
	ReasonRejected   = "rejected"
	ReasonMarkFailed = "mark_failed"
	ReasonCancelled  = "cancelled"
)

// RecordStore is the slice of the record service the engine needs.
type RecordStore interface {
	ListAll(ctx context.Context, m rmodels.Module) ([]*rmodels.Record, error)
	MarkSynced(ctx context.Context, m rmodels.Module, clientID string) error
}

// Session yields the worker the records are pushed for.
type Session interface {
	CurrentUser(ctx context.Context) (string, error)
}

// Engine runs one sync at a time. Concurrent Run calls queue on the engine
// lock, so a record is never pushed by two runs at once.
type Engine struct {
	mu sync.Mutex

	records   RecordStore
	remote    ports.RemoteEndpoint
	session   Session
	batchSize int
	now       func() time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics
	auditor   audit.Emitter
	tracer    trace.Tracer
}

type Option func(*Engine)

func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithAuditPublisher(p audit.Emitter) Option {
	return func(e *Engine) {
		e.auditor = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

func New(records RecordStore, remote ports.RemoteEndpoint, session Session, opts ...Option) *Engine {
	e := &Engine{
		records:   records,
		remote:    remote,
		session:   session,
		batchSize: defaultBatchSize,
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer("fieldsync/sync"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run pushes every PENDING record and reports what happened. It never
// returns an error: each failure is one entry in Report.Failed and the run
// moves on to the next batch or module.
func (e *Engine) Run(ctx context.Context) *models.Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := &models.Report{
		RunID:     uuid.NewString(),
		StartedAt: e.now().UTC(),
		Failed:    []models.Failure{},
	}
	ctx, span := e.tracer.Start(ctx, "sync.Run", trace.WithAttributes(attribute.String("sync.run_id", report.RunID)))
	defer span.End()

	workerID, err := e.session.CurrentUser(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "sync without worker id", "run_id", report.RunID, "error", err)
	}
	report.WorkerID = workerID
	ctx = requestcontext.WithWorkerID(ctx, workerID)

	for _, m := range rmodels.AllModules() {
		e.runModule(ctx, m, report)
	}

	report.FinishedAt = e.now().UTC()
	e.metrics.ObserveRun(report.FinishedAt.Sub(report.StartedAt))
	span.SetAttributes(
		attribute.Int("sync.attempted", report.Attempted),
		attribute.Int("sync.succeeded", report.Succeeded),
		attribute.Int("sync.failed", len(report.Failed)),
	)
	e.logger.InfoContext(ctx, "sync run finished",
		"run_id", report.RunID,
		"worker_id", workerID,
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", len(report.Failed),
	)
	e.emitAudit(ctx, audit.Event{
		Action:   audit.ActionSyncRun,
		WorkerID: workerID,
		Outcome:  runOutcome(report),
	})
	return report
}

func (e *Engine) runModule(ctx context.Context, m rmodels.Module, report *models.Report) {
	listCtx := ctx
	if ctx.Err() != nil {
		// Still list so the records left PENDING show up in the report.
		var cancel context.CancelFunc
		listCtx, cancel = settle(ctx)
		defer cancel()
	}
	all, err := e.records.ListAll(listCtx, m)
	if err != nil {
		e.logger.ErrorContext(ctx, "sync could not list module", "module", m, "error", err)
		report.Fail(m, "", ReasonListFailed)
		return
	}
	var pending []models.Item
	for _, r := range all {
		if r.IsPending() {
			pending = append(pending, models.Item{Module: m, Record: r})
		}
	}

	for start := 0; start < len(pending); start += e.batchSize {
		if ctx.Err() != nil {
			e.logger.WarnContext(ctx, "sync cancelled before batch", "module", m, "remaining", len(pending)-start)
			for _, it := range pending[start:] {
				e.fail(ctx, report, m, it.Record.ClientID, ReasonCancelled)
			}
			return
		}
		end := min(start+e.batchSize, len(pending))
		e.pushBatch(ctx, m, report.WorkerID, pending[start:end], report)
	}
}

func (e *Engine) pushBatch(ctx context.Context, m rmodels.Module, workerID string, batch []models.Item, report *models.Report) {
	report.Attempted += len(batch)

	outcomes, err := e.remote.Push(ctx, workerID, m, batch)
	if err != nil {
		reason := string(ports.CategoryOf(err))
		e.logger.WarnContext(ctx, "sync batch failed", "module", m, "size", len(batch), "reason", reason, "error", err)
		for _, it := range batch {
			e.fail(ctx, report, m, it.Record.ClientID, reason)
		}
		return
	}

	byID := make(map[string]models.Outcome, len(outcomes))
	for _, o := range outcomes {
		byID[o.ClientID] = o
	}
	for _, it := range batch {
		id := it.Record.ClientID
		o, ok := byID[id]
		switch {
		case !ok:
			e.fail(ctx, report, m, id, ReasonNoOutcome)
		case !o.Accepted:
			reason := o.Reason
			if reason == "" {
				reason = ReasonRejected
			}
			e.fail(ctx, report, m, id, reason)
		default:
			if err := e.markSynced(ctx, m, id); err != nil {
				e.logger.ErrorContext(ctx, "accepted record not marked synced", "module", m, "client_id", id, "error", err)
				e.fail(ctx, report, m, id, ReasonMarkFailed)
				continue
			}
			report.Succeeded++
			e.metrics.IncrementOutcome(m.String(), "synced")
		}
	}
}

// markSynced records an acceptance the remote already holds, so it runs even
// when the caller gave up after the push returned.
func (e *Engine) markSynced(ctx context.Context, m rmodels.Module, clientID string) error {
	ctx, cancel := settle(ctx)
	defer cancel()
	return e.records.MarkSynced(ctx, m, clientID)
}

func settle(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
}

func (e *Engine) fail(ctx context.Context, report *models.Report, m rmodels.Module, clientID, reason string) {
	report.Fail(m, clientID, reason)
	e.metrics.IncrementOutcome(m.String(), "failed")
	e.emitAudit(ctx, audit.Event{
		Action:   audit.ActionRecordSyncFailed,
		WorkerID: report.WorkerID,
		Module:   m.String(),
		ClientID: clientID,
		Reason:   reason,
	})
}

func (e *Engine) emitAudit(ctx context.Context, event audit.Event) {
	if e.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := e.auditor.Emit(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

func runOutcome(r *models.Report) string {
	switch {
	case len(r.Failed) == 0:
		return "ok"
	case r.Succeeded > 0:
		return "partial"
	default:
		return "failed"
	}
}
