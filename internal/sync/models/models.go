package models

import (
	"time"

	rmodels "fieldsync/internal/records/models"
)

// Item is one pending record offered to the remote endpoint.
type Item struct {
	Module rmodels.Module
	Record *rmodels.Record
}

// Outcome is the remote endpoint's verdict on one item.
type Outcome struct {
	ClientID string `json:"clientId"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Failure explains why a record is still PENDING after a run. ClientID is
// empty when a whole module could not be read.
type Failure struct {
	Module   rmodels.Module `json:"module"`
	ClientID string         `json:"clientId,omitempty"`
	Reason   string         `json:"reason"`
}

// Report summarizes one sync run.
type Report struct {
	RunID      string    `json:"runId"`
	WorkerID   string    `json:"workerId,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Attempted  int       `json:"attempted"`
	Succeeded  int       `json:"succeeded"`
	Failed     []Failure `json:"failed"`
}

// Fail records a record or module that did not sync.
func (r *Report) Fail(m rmodels.Module, clientID, reason string) {
	r.Failed = append(r.Failed, Failure{Module: m, ClientID: clientID, Reason: reason})
}
