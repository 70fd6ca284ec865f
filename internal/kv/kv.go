// Package kv defines the string-keyed persistence primitive every domain
// store is built on, plus the backends that implement it.
//
// Values are opaque strings; each key is written and read whole, so a single
// Set is the unit of durability. Backends never merge or patch values.
package kv

import (
	"context"
)

// Store is asynchronous (context-bound), string-keyed storage that survives
// process restarts. Get reports ok=false for an absent key rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Well-known keys.
const (
	KeyCurrentUser      = "currentUser"
	KeySelectedLanguage = "selectedLanguage"
	KeyPHCProfile       = "phcProfile"
)

// ModuleKey is the key holding a module's serialized record collection.
func ModuleKey(module string) string {
	return module
}

// ASHAProfileKey is the key holding one worker profile.
func ASHAProfileKey(ashaID string) string {
	return "ashaProfile_" + ashaID
}

// LanguageKey is the key holding a downloaded dictionary.
func LanguageKey(code string) string {
	return "lang_" + code
}
