package ports

import (
	"context"
	"errors"
	"fmt"

	rmodels "fieldsync/internal/records/models"
	"fieldsync/internal/sync/models"
)

//go:generate mockgen -source=remote.go -destination=mocks/remote-mocks.go -package=mocks RemoteEndpoint

// RemoteEndpoint accepts batches of pending records on behalf of a worker.
// It returns one Outcome per item it judged; an error means the whole batch
// was not delivered.
type RemoteEndpoint interface {
	Push(ctx context.Context, workerID string, module rmodels.Module, items []models.Item) ([]models.Outcome, error)
}

// ErrorCategory is the normalized failure taxonomy for remote calls. The
// category string becomes the failure reason in reports.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorOutage         ErrorCategory = "provider_outage"
	ErrorUnavailable    ErrorCategory = "unavailable"
	ErrorAuthentication ErrorCategory = "authentication"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorRejected       ErrorCategory = "rejected"
	ErrorBadData        ErrorCategory = "bad_data"
	ErrorInternal       ErrorCategory = "internal"
)

// RemoteError wraps a failed call with its category.
type RemoteError struct {
	Category   ErrorCategory
	Message    string
	Underlying error
}

func (e *RemoteError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("remote [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("remote [%s]: %s", e.Category, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Underlying
}

func NewRemoteError(category ErrorCategory, message string, underlying error) *RemoteError {
	return &RemoteError{Category: category, Message: message, Underlying: underlying}
}

// Trips reports whether the failure says something about the endpoint's
// health rather than about the request.
func (e *RemoteError) Trips() bool {
	return e.Category == ErrorTimeout || e.Category == ErrorOutage || e.Category == ErrorRateLimited
}

// CategoryOf extracts the category, defaulting to ErrorInternal.
func CategoryOf(err error) ErrorCategory {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Category
	}
	return ErrorInternal
}
