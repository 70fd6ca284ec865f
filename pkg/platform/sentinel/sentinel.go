package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Key-value backends and remote
// adapters return these (optionally wrapped) so services can translate them
// into domain errors.
//
//   - ErrNotFound: key or entity does not exist in the backing store
//   - ErrUnavailable: backend or remote endpoint temporarily unreachable
//   - ErrRejected: remote endpoint refused an item
//   - ErrBadData: stored or received payload could not be decoded
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrRejected    = errors.New("rejected")
	ErrBadData     = errors.New("bad data")
)
