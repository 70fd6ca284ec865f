// Package audit carries a trail of field-data mutations (records saved and
// synced, languages downloaded, profiles saved) to an append-only sink.
package audit

import (
	"context"
	"time"
)

// Action names an audited operation.
type Action string

const (
	ActionRecordSaved        Action = "record_saved"
	ActionRecordSynced       Action = "record_synced"
	ActionRecordSyncFailed   Action = "record_sync_failed"
	ActionSyncRun            Action = "sync_run"
	ActionLanguageDownloaded Action = "language_downloaded"
	ActionLanguageActivated  Action = "language_activated"
	ActionProfileRegistered  Action = "profile_registered"
	ActionProfileSaved       Action = "profile_saved"
	ActionWorkerLogin        Action = "worker_login"
)

// Event is emitted from domain services. Keep it transport-agnostic so sinks
// can fan out; field values are identifiers only, never form contents.
type Event struct {
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	WorkerID  string    `json:"worker_id,omitempty"`
	Module    string    `json:"module,omitempty"`
	ClientID  string    `json:"client_id,omitempty"`
	Language  string    `json:"language,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Store is an append-only event sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what domain services depend on. Emission is best-effort: a
// failed audit write never fails the audited operation.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
