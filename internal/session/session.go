// Package session holds the device-wide pointers that outlive a request: the
// worker currently signed in and the language the UI renders in.
package session

import (
	"context"

	"fieldsync/internal/kv"
	dErrors "fieldsync/pkg/domain-errors"
)

// Session reads and writes the pointers as plain strings. An empty string
// means unset.
type Session struct {
	kv kv.Store
}

func New(store kv.Store) *Session {
	return &Session{kv: store}
}

// CurrentUser returns the signed-in worker ID, or "" when nobody is signed in.
func (s *Session) CurrentUser(ctx context.Context) (string, error) {
	return s.get(ctx, kv.KeyCurrentUser)
}

func (s *Session) SetCurrentUser(ctx context.Context, workerID string) error {
	return s.set(ctx, kv.KeyCurrentUser, workerID)
}

// SelectedLanguage returns the active language code, or "" when never chosen.
func (s *Session) SelectedLanguage(ctx context.Context) (string, error) {
	return s.get(ctx, kv.KeySelectedLanguage)
}

func (s *Session) SetSelectedLanguage(ctx context.Context, code string) error {
	return s.set(ctx, kv.KeySelectedLanguage, code)
}

func (s *Session) get(ctx context.Context, key string) (string, error) {
	v, _, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodePersistence, "failed to read "+key)
	}
	return v, nil
}

func (s *Session) set(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, key, value); err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "failed to write "+key)
	}
	return nil
}
