// Package service downloads, stores and resolves UI string dictionaries.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"fieldsync/internal/kv"
	"fieldsync/internal/translation/defaults"
	"fieldsync/internal/translation/metrics"
	"fieldsync/internal/translation/models"
	"fieldsync/internal/translation/ports"
	dErrors "fieldsync/pkg/domain-errors"
	"fieldsync/pkg/platform/audit"
	"fieldsync/pkg/requestcontext"
)

const defaultConcurrency = 4

// Session is the selected-language pointer.
type Session interface {
	SelectedLanguage(ctx context.Context) (string, error)
	SetSelectedLanguage(ctx context.Context, code string) error
}

// Cache keeps one stored dictionary per downloaded language. Every stored
// dictionary has exactly the base dictionary's keys.
type Cache struct {
	kv          kv.Store
	session     Session
	translator  ports.Translator
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
	auditor     audit.Emitter
	tracer      trace.Tracer
}

type Option func(*Cache)

// WithConcurrency bounds in-flight translation requests during a download.
func WithConcurrency(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

func WithAuditPublisher(p audit.Emitter) Option {
	return func(c *Cache) {
		c.auditor = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Cache) {
		c.tracer = t
	}
}

func New(store kv.Store, session Session, translator ports.Translator, opts ...Option) *Cache {
	c := &Cache{
		kv:          store,
		session:     session,
		translator:  translator,
		concurrency: defaultConcurrency,
		logger:      slog.New(slog.DiscardHandler),
		tracer:      otel.Tracer("fieldsync/translation"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Download translates every base key into code, stores the dictionary and
// makes code the selected language. A key whose translation fails keeps its
// base text; only storage failures and cancellation return an error.
func (c *Cache) Download(ctx context.Context, code string) (*models.Dictionary, *models.DownloadReport, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, nil, err
	}
	ctx, span := c.tracer.Start(ctx, "translation.Download", trace.WithAttributes(attribute.String("translation.language", code)))
	defer span.End()
	start := time.Now()

	base := defaults.Strings()
	keys := defaults.Keys()
	results := make([]models.Result, len(keys))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, key := range keys {
		g.Go(func() error {
			results[i] = c.translateKey(ctx, key, base[key], code)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeTimeout, "language download cancelled")
	}

	dict := &models.Dictionary{Code: code, Strings: make(map[string]string, len(keys))}
	report := &models.DownloadReport{Code: code, Total: len(keys), Fallbacks: []models.Result{}}
	for _, r := range results {
		dict.Strings[r.Key] = r.Text
		if r.Fallback {
			report.Fallbacks = append(report.Fallbacks, r)
			c.metrics.IncrementKey(code, "fallback")
			continue
		}
		report.Translated++
		c.metrics.IncrementKey(code, "ok")
	}

	raw, err := json.Marshal(dict.Strings)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode dictionary")
	}
	if err := c.kv.Set(ctx, kv.LanguageKey(code), string(raw)); err != nil {
		c.logger.ErrorContext(ctx, "failed to store dictionary", "language", code, "error", err)
		return nil, nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to store "+code+" dictionary")
	}
	if err := c.session.SetSelectedLanguage(ctx, code); err != nil {
		return nil, nil, err
	}

	c.metrics.ObserveDownload(code, time.Since(start))
	span.SetAttributes(attribute.Int("translation.fallbacks", len(report.Fallbacks)))
	c.logger.InfoContext(ctx, "language downloaded",
		"language", code,
		"translated", report.Translated,
		"fallbacks", len(report.Fallbacks),
	)
	c.emitAudit(ctx, audit.Event{
		Action:   audit.ActionLanguageDownloaded,
		Language: code,
		Outcome:  downloadOutcome(report),
	})
	return dict, report, nil
}

func (c *Cache) translateKey(ctx context.Context, key, text, target string) models.Result {
	out, err := c.translator.Translate(ctx, text, defaults.Code, target)
	if err != nil {
		c.logger.DebugContext(ctx, "translation fell back", "key", key, "language", target, "error", err)
		return models.Fallback(key, text, ports.ReasonOf(err))
	}
	if strings.TrimSpace(out) == "" {
		return models.Fallback(key, text, ports.ReasonEmpty)
	}
	return models.Ok(key, out)
}

// Resolve returns the dictionary for code, or for the selected language when
// code is empty. Keys missing from the stored copy come from the base
// dictionary; an absent or unreadable copy resolves to the base dictionary.
func (c *Cache) Resolve(ctx context.Context, code string) *models.Dictionary {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		code = c.ActiveLanguage(ctx)
	}
	base := defaults.Strings()
	if code == defaults.Code {
		return &models.Dictionary{Code: defaults.Code, Strings: base}
	}

	stored, ok := c.load(ctx, code)
	if !ok {
		return &models.Dictionary{Code: defaults.Code, Strings: base}
	}
	for key := range base {
		if v, found := stored[key]; found {
			base[key] = v
		}
	}
	return &models.Dictionary{Code: code, Strings: base}
}

// Activate selects code. The base language and already-downloaded languages
// only move the pointer; anything else is downloaded first.
func (c *Cache) Activate(ctx context.Context, code string) (*models.Dictionary, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	if code != defaults.Code {
		if _, ok := c.load(ctx, code); !ok {
			dict, _, err := c.Download(ctx, code)
			return dict, err
		}
	}
	if err := c.session.SetSelectedLanguage(ctx, code); err != nil {
		return nil, err
	}
	c.emitAudit(ctx, audit.Event{Action: audit.ActionLanguageActivated, Language: code})
	return c.Resolve(ctx, code), nil
}

// ActiveLanguage returns the selected language, or the base language when
// none is selected or the pointer cannot be read.
func (c *Cache) ActiveLanguage(ctx context.Context) string {
	code, err := c.session.SelectedLanguage(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "selected language unreadable", "error", err)
		return defaults.Code
	}
	if code == "" {
		return defaults.Code
	}
	return code
}

func (c *Cache) load(ctx context.Context, code string) (map[string]string, bool) {
	raw, ok, err := c.kv.Get(ctx, kv.LanguageKey(code))
	if err != nil {
		c.logger.WarnContext(ctx, "stored dictionary unreadable", "language", code, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var stored map[string]string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		c.logger.WarnContext(ctx, "stored dictionary corrupt", "language", code, "error", err)
		return nil, false
	}
	return stored, true
}

func (c *Cache) emitAudit(ctx context.Context, event audit.Event) {
	if c.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := c.auditor.Emit(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

func normalizeCode(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "", dErrors.New(dErrors.CodeValidation, "language code is required")
	}
	return code, nil
}

func downloadOutcome(r *models.DownloadReport) string {
	switch {
	case len(r.Fallbacks) == 0:
		return "ok"
	case r.Translated > 0:
		return "partial"
	default:
		return "fallback"
	}
}
