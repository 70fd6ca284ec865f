// Package app assembles the services from configuration. Both the HTTP
// server and the fieldctl CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"fieldsync/internal/kv"
	"fieldsync/internal/platform/config"
	"fieldsync/internal/platform/redis"
	profileservice "fieldsync/internal/profile/service"
	recordsmetrics "fieldsync/internal/records/metrics"
	recordsservice "fieldsync/internal/records/service"
	recordsstore "fieldsync/internal/records/store"
	"fieldsync/internal/session"
	"fieldsync/internal/sync/adapters/httpremote"
	syncmetrics "fieldsync/internal/sync/metrics"
	syncservice "fieldsync/internal/sync/service"
	"fieldsync/internal/translation/adapters/libretranslate"
	translationmetrics "fieldsync/internal/translation/metrics"
	translationservice "fieldsync/internal/translation/service"
	audit "fieldsync/pkg/platform/audit"
	"fieldsync/pkg/platform/audit/publisher"
	"fieldsync/pkg/platform/audit/publishers/kafka"
	"fieldsync/pkg/platform/circuit"
)

const auditBufferSize = 256

// App holds the wired services and the resources they own.
type App struct {
	Store       kv.Store
	Session     *session.Session
	Records     *recordsservice.Service
	Profiles    *profileservice.Service
	Sync        *syncservice.Engine
	Translation *translationservice.Cache

	health  func(ctx context.Context) error
	closers []func(ctx context.Context) error
}

type buildOptions struct {
	metrics bool
}

type Option func(*buildOptions)

// WithMetrics registers the Prometheus collectors. Only one App per process
// may enable it.
func WithMetrics() Option {
	return func(o *buildOptions) { o.metrics = true }
}

// Build opens the configured store and wires every service onto it.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	a := &App{}
	store, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store

	auditor, err := a.openAudit(ctx, cfg.Audit, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	var (
		rm *recordsmetrics.Metrics
		sm *syncmetrics.Metrics
		tm *translationmetrics.Metrics
	)
	if bo.metrics {
		rm, sm, tm = recordsmetrics.New(), syncmetrics.New(), translationmetrics.New()
	}
	tracer := otel.Tracer("fieldsync")

	a.Session = session.New(store)
	a.Records = recordsservice.New(recordsstore.New(store),
		recordsservice.WithLogger(logger),
		recordsservice.WithMetrics(rm),
		recordsservice.WithAuditPublisher(auditor),
	)
	a.Profiles = profileservice.New(store, a.Session,
		profileservice.WithLogger(logger),
		profileservice.WithAuditPublisher(auditor),
	)

	remote := httpremote.New(cfg.Sync.EndpointURL, cfg.Sync.Timeout,
		httpremote.WithSigningKey(cfg.Sync.SigningKey),
		httpremote.WithBreaker(circuit.New("sync-remote")),
		httpremote.WithLogger(logger),
	)
	a.Sync = syncservice.New(a.Records, remote, a.Session,
		syncservice.WithBatchSize(cfg.Sync.BatchSize),
		syncservice.WithLogger(logger),
		syncservice.WithMetrics(sm),
		syncservice.WithAuditPublisher(auditor),
		syncservice.WithTracer(tracer),
	)

	translator := libretranslate.New(cfg.Translation.EndpointURL, cfg.Translation.Timeout,
		libretranslate.WithAPIKey(cfg.Translation.APIKey),
		libretranslate.WithBreaker(circuit.New("translation")),
		libretranslate.WithLogger(logger),
	)
	a.Translation = translationservice.New(store, a.Session, translator,
		translationservice.WithConcurrency(cfg.Translation.Concurrency),
		translationservice.WithLogger(logger),
		translationservice.WithMetrics(tm),
		translationservice.WithAuditPublisher(auditor),
		translationservice.WithTracer(tracer),
	)
	return a, nil
}

// Health pings the network-backed store, if any.
func (a *App) Health(ctx context.Context) error {
	if a.health == nil {
		return nil
	}
	return a.health(ctx)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openStore(ctx context.Context, cfg config.Config) (kv.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return kv.NewInMemoryStore(), nil
	case config.BackendSQLite:
		s, err := kv.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return s.Close() })
		return s, nil
	case config.BackendPostgres:
		s, err := kv.OpenPostgres(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return s.Close() })
		return s, nil
	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, errors.New("redis backend selected but REDIS_URL is empty")
		}
		a.health = client.Health
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		return kv.NewRedisStore(client.Client, kv.WithRedisKeyPrefix(cfg.Storage.KeyPrefix)), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// openAudit returns nil when no brokers are configured; services then skip
// auditing.
func (a *App) openAudit(ctx context.Context, cfg config.AuditConfig, logger *slog.Logger) (audit.Emitter, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, nil
	}
	store, err := kafka.New(cfg.KafkaBrokers, cfg.Topic)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureTopic(ctx, 1, 1); err != nil {
		logger.WarnContext(ctx, "audit topic not ensured", "topic", cfg.Topic, "error", err)
	}
	pub := publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(logger),
	)
	a.closers = append(a.closers, func(ctx context.Context) error {
		pub.Close()
		return store.Close(ctx)
	})
	return pub, nil
}
