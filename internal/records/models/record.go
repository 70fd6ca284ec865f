package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is a module-tagged field record. The base (ClientID, Module, Status)
// is common; Payload carries the module-specific fields.
type Record struct {
	ClientID  string
	Module    Module
	Status    Status
	CreatedAt time.Time
	SyncedAt  *time.Time
	Payload   Payload
}

// IsPending reports whether the record still awaits remote acceptance.
func (r *Record) IsPending() bool {
	return r.Status == StatusPending
}

// Fields returns the payload as a flat field map.
func (r *Record) Fields() map[string]string {
	if r.Payload == nil {
		return map[string]string{}
	}
	fields, err := PayloadFields(r.Payload)
	if err != nil {
		return map[string]string{}
	}
	return fields
}

// base keys share the object with payload fields; a payload must never use them.
const (
	keyClientID  = "clientId"
	keyModule    = "module"
	keyStatus    = "status"
	keyCreatedAt = "createdAt"
	keySyncedAt  = "syncedAt"
)

// MarshalJSON writes the record as one flat object with sorted keys.
func (r *Record) MarshalJSON() ([]byte, error) {
	obj := map[string]any{}
	if r.Payload != nil {
		fields, err := PayloadFields(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", r.Module, err)
		}
		for k, v := range fields {
			obj[k] = v
		}
	}
	obj[keyClientID] = r.ClientID
	obj[keyModule] = r.Module
	obj[keyStatus] = r.Status
	if !r.CreatedAt.IsZero() {
		obj[keyCreatedAt] = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	if r.SyncedAt != nil {
		obj[keySyncedAt] = r.SyncedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(obj)
}

// UnmarshalJSON reads the flat object back into base and typed payload.
// Records written before the module tag existed take the module from the
// collection they were loaded from (see DecodeCollection).
func (r *Record) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	var base struct {
		ClientID  string     `json:"clientId"`
		Module    Module     `json:"module"`
		Status    Status     `json:"status"`
		CreatedAt *time.Time `json:"createdAt"`
		SyncedAt  *time.Time `json:"syncedAt"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	for _, k := range []string{keyClientID, keyModule, keyStatus, keyCreatedAt, keySyncedAt} {
		delete(obj, k)
	}

	r.ClientID = base.ClientID
	if base.Module != "" {
		r.Module = base.Module
	}
	r.Status = base.Status
	if r.Status == "" {
		r.Status = StatusPending
	}
	if base.CreatedAt != nil {
		r.CreatedAt = *base.CreatedAt
	}
	r.SyncedAt = base.SyncedAt

	if !r.Module.IsValid() {
		return fmt.Errorf("record %q: unknown module %q", r.ClientID, r.Module)
	}
	p, err := NewPayload(r.Module)
	if err != nil {
		return err
	}
	rest, err := json.Marshal(stringifyValues(obj))
	if err != nil {
		return err
	}
	// Unknown keys are tolerated here: persisted data may predate a field rename.
	if err := json.Unmarshal(rest, p); err != nil {
		return fmt.Errorf("record %q: decode payload: %w", r.ClientID, err)
	}
	r.Payload = p
	return nil
}

// stringifyValues turns numeric and boolean field values into strings; older
// clients stored ages and counts as numbers.
func stringifyValues(obj map[string]json.RawMessage) map[string]string {
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		if string(v) == "null" {
			continue
		}
		out[k] = string(v)
	}
	return out
}

// DecodeCollection parses a persisted module collection. Entries stored
// without a client id get the positional one.
func DecodeCollection(m Module, raw string) ([]*Record, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode %s collection: %w", m, err)
	}
	records := make([]*Record, 0, len(items))
	for i, item := range items {
		rec := &Record{Module: m}
		if err := rec.UnmarshalJSON(item); err != nil {
			return nil, fmt.Errorf("decode %s record %d: %w", m, i, err)
		}
		if rec.ClientID == "" {
			rec.ClientID = ClientID(m, i+1)
		}
		records = append(records, rec)
	}
	return records, nil
}

// EncodeCollection serializes a module collection.
func EncodeCollection(records []*Record) (string, error) {
	if records == nil {
		records = []*Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
