package ports

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=translator.go -destination=mocks/translator-mocks.go -package=mocks Translator

// Translator turns one text from source into target language.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Reason values for keys that fell back to the base text.
const (
	ReasonTimeout     = "timeout"
	ReasonUnavailable = "unavailable"
	ReasonRejected    = "rejected"
	ReasonBadData     = "bad_data"
	ReasonEmpty       = "empty_translation"
	ReasonInternal    = "internal"
)

// TranslateError carries a fallback reason.
type TranslateError struct {
	Reason     string
	Underlying error
}

func (e *TranslateError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("translate [%s]: %v", e.Reason, e.Underlying)
	}
	return "translate [" + e.Reason + "]"
}

func (e *TranslateError) Unwrap() error {
	return e.Underlying
}

func NewTranslateError(reason string, underlying error) *TranslateError {
	return &TranslateError{Reason: reason, Underlying: underlying}
}

// ReasonOf extracts the fallback reason, defaulting to ReasonInternal.
func ReasonOf(err error) string {
	var te *TranslateError
	if errors.As(err, &te) {
		return te.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return ReasonInternal
}
