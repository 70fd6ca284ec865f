// Package service stores worker and PHC profiles and tracks which worker is
// signed in on the device.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fieldsync/internal/kv"
	"fieldsync/internal/profile/models"
	dErrors "fieldsync/pkg/domain-errors"
	"fieldsync/pkg/platform/audit"
	"fieldsync/pkg/requestcontext"
)

// Session is the signed-in worker pointer.
type Session interface {
	CurrentUser(ctx context.Context) (string, error)
	SetCurrentUser(ctx context.Context, workerID string) error
}

type Service struct {
	kv      kv.Store
	session Session
	logger  *slog.Logger
	auditor audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(p audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func New(store kv.Store, session Session, opts ...Option) *Service {
	s := &Service{
		kv:      store,
		session: session,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register saves a new worker profile and signs that worker in. Registering
// an existing ID overwrites the stored profile.
func (s *Service) Register(ctx context.Context, p models.ASHAProfile) (*models.ASHAProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.put(ctx, kv.ASHAProfileKey(p.AshaID), p); err != nil {
		return nil, err
	}
	if err := s.session.SetCurrentUser(ctx, p.AshaID); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "asha profile registered", "asha_id", p.AshaID)
	s.emitAudit(ctx, audit.Event{Action: audit.ActionProfileRegistered, WorkerID: p.AshaID})
	return &p, nil
}

// Login switches the current worker. The profile must already exist on the device.
func (s *Service) Login(ctx context.Context, ashaID string) (*models.ASHAProfile, error) {
	if ashaID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "ashaId is required")
	}
	p, err := s.lookup(ctx, ashaID)
	if err != nil {
		return nil, err
	}
	if err := s.session.SetCurrentUser(ctx, ashaID); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "asha worker signed in", "asha_id", ashaID)
	s.emitAudit(ctx, audit.Event{Action: audit.ActionWorkerLogin, WorkerID: ashaID})
	return p, nil
}

// Current returns the signed-in worker's profile.
func (s *Service) Current(ctx context.Context) (*models.ASHAProfile, error) {
	id, err := s.session.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, dErrors.New(dErrors.CodeNotFound, "no worker is signed in")
	}
	return s.lookup(ctx, id)
}

// Save updates the signed-in worker's profile. The worker ID is fixed.
func (s *Service) Save(ctx context.Context, p models.ASHAProfile) (*models.ASHAProfile, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if p.AshaID == "" {
		p.AshaID = current.AshaID
	}
	if p.AshaID != current.AshaID {
		return nil, dErrors.New(dErrors.CodeValidation, "ashaId cannot be changed")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.put(ctx, kv.ASHAProfileKey(p.AshaID), p); err != nil {
		return nil, err
	}
	s.emitAudit(ctx, audit.Event{Action: audit.ActionProfileSaved, WorkerID: p.AshaID})
	return &p, nil
}

// SavePHC replaces the single PHC profile.
func (s *Service) SavePHC(ctx context.Context, p models.PHCProfile) (*models.PHCProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.put(ctx, kv.KeyPHCProfile, p); err != nil {
		return nil, err
	}
	s.emitAudit(ctx, audit.Event{Action: audit.ActionProfileSaved, Reason: "phc"})
	return &p, nil
}

func (s *Service) PHC(ctx context.Context) (*models.PHCProfile, error) {
	var p models.PHCProfile
	found, err := s.get(ctx, kv.KeyPHCProfile, &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, dErrors.New(dErrors.CodeNotFound, "phc profile not registered")
	}
	return &p, nil
}

func (s *Service) lookup(ctx context.Context, ashaID string) (*models.ASHAProfile, error) {
	var p models.ASHAProfile
	found, err := s.get(ctx, kv.ASHAProfileKey(ashaID), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("asha profile %s not found", ashaID))
	}
	return &p, nil
}

func (s *Service) get(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodePersistence, "failed to read "+key)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodePersistence, "stored "+key+" is unreadable")
	}
	return true, nil
}

func (s *Service) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode "+key)
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		s.logger.ErrorContext(ctx, "failed to write profile", "key", key, "error", err)
		return dErrors.Wrap(err, dErrors.CodePersistence, "failed to write "+key)
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
