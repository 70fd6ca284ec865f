// Package service owns the per-module record collections: sequential client
// IDs, append, status counts and the PENDING to SYNCED transition.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fieldsync/internal/records/metrics"
	"fieldsync/internal/records/models"
	dErrors "fieldsync/pkg/domain-errors"
	"fieldsync/pkg/platform/audit"
	"fieldsync/pkg/requestcontext"
)

// Store moves whole module collections in and out of persistence.
type Store interface {
	Load(ctx context.Context, m models.Module) ([]*models.Record, error)
	Save(ctx context.Context, m models.Module, records []*models.Record) error
}

// Service is the record store. All read-modify-write cycles on a module run
// under that module's lock, so client IDs never repeat.
type Service struct {
	store   Store
	tx      *moduleTx
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

// WithClock injects the time source used for createdAt and syncedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTxTimeout bounds how long a module transaction may wait and run.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.tx.timeout = d
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tx:     &moduleTx{},
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextClientID previews the identifier the next Append on the module would
// assign. It reserves nothing: two calls without an Append in between return
// the same value, and a concurrent Append may take it first.
func (s *Service) NextClientID(ctx context.Context, m models.Module) (string, error) {
	if _, err := models.ParseModule(m.String()); err != nil {
		return "", err
	}
	records, err := s.load(ctx, m)
	if err != nil {
		return "", err
	}
	return models.ClientID(m, len(records)+1), nil
}

// Append validates the payload and stores it as a new PENDING record. The
// collection is append-only, so its length is the module's sequence.
func (s *Service) Append(ctx context.Context, m models.Module, payload models.Payload) (*models.Record, error) {
	if _, err := models.ParseModule(m.String()); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s: payload is required", m))
	}
	if payload.Module() != m {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("payload for %s submitted to %s", payload.Module(), m))
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	var created *models.Record
	err := s.tx.RunInModule(ctx, m, func(ctx context.Context) error {
		records, err := s.load(ctx, m)
		if err != nil {
			return err
		}
		rec := &models.Record{
			ClientID:  models.ClientID(m, len(records)+1),
			Module:    m,
			Status:    models.StatusPending,
			CreatedAt: s.now().UTC(),
			Payload:   payload,
		}
		if err := s.save(ctx, m, append(records, rec)); err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementAppended(m.String())
	s.logger.InfoContext(ctx, "record appended",
		"module", m,
		"client_id", created.ClientID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitAudit(ctx, audit.Event{
		Action:   audit.ActionRecordSaved,
		Module:   m.String(),
		ClientID: created.ClientID,
	})
	return created, nil
}

// AppendFields decodes a flat field map into the module's payload and appends it.
func (s *Service) AppendFields(ctx context.Context, m models.Module, fields map[string]string) (*models.Record, error) {
	if _, err := models.ParseModule(m.String()); err != nil {
		return nil, err
	}
	payload, err := models.DecodePayload(m, fields)
	if err != nil {
		return nil, err
	}
	return s.Append(ctx, m, payload)
}

// ListAll returns the module's records in insertion order.
func (s *Service) ListAll(ctx context.Context, m models.Module) ([]*models.Record, error) {
	if _, err := models.ParseModule(m.String()); err != nil {
		return nil, err
	}
	return s.load(ctx, m)
}

func (s *Service) CountByStatus(ctx context.Context, m models.Module, status models.Status) (int, error) {
	records, err := s.ListAll(ctx, m)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range records {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

// MarkSynced flips a PENDING record to SYNCED and stamps syncedAt. Marking an
// already synced record is a no-op.
func (s *Service) MarkSynced(ctx context.Context, m models.Module, clientID string) error {
	if _, err := models.ParseModule(m.String()); err != nil {
		return err
	}
	changed := false
	err := s.tx.RunInModule(ctx, m, func(ctx context.Context) error {
		records, err := s.load(ctx, m)
		if err != nil {
			return err
		}
		var target *models.Record
		for _, r := range records {
			if r.ClientID == clientID {
				target = r
				break
			}
		}
		if target == nil {
			return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("%s record %s not found", m, clientID))
		}
		if target.Status == models.StatusSynced {
			return nil
		}
		now := s.now().UTC()
		target.Status = models.StatusSynced
		target.SyncedAt = &now
		if err := s.save(ctx, m, records); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return err
	}
	if changed {
		s.metrics.IncrementMarkedSynced(m.String())
		s.emitAudit(ctx, audit.Event{
			Action:   audit.ActionRecordSynced,
			Module:   m.String(),
			ClientID: clientID,
		})
	}
	return nil
}

// Summary counts totals and pending records across every module.
func (s *Service) Summary(ctx context.Context) (*models.Summary, error) {
	summary := &models.Summary{Modules: make([]models.ModuleSummary, 0, len(models.AllModules()))}
	for _, m := range models.AllModules() {
		records, err := s.load(ctx, m)
		if err != nil {
			return nil, err
		}
		ms := models.ModuleSummary{Module: m, Total: len(records)}
		for _, r := range records {
			if r.IsPending() {
				ms.Pending++
			}
		}
		summary.Add(ms)
	}
	return summary, nil
}

func (s *Service) load(ctx context.Context, m models.Module) ([]*models.Record, error) {
	records, err := s.store.Load(ctx, m)
	if err != nil {
		s.metrics.IncrementPersistenceFailure(m.String(), "load")
		s.logger.ErrorContext(ctx, "failed to load records", "module", m, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, fmt.Sprintf("failed to load %s records", m))
	}
	return records, nil
}

func (s *Service) save(ctx context.Context, m models.Module, records []*models.Record) error {
	if err := s.store.Save(ctx, m, records); err != nil {
		s.metrics.IncrementPersistenceFailure(m.String(), "save")
		s.logger.ErrorContext(ctx, "failed to save records", "module", m, "error", err)
		return dErrors.Wrap(err, dErrors.CodePersistence, fmt.Sprintf("failed to save %s records", m))
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.WorkerID = requestcontext.WorkerID(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
