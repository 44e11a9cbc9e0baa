package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Engines, transports and stream
// adapters return these (optionally wrapped) so the bridge can translate them
// into domain errors or failed results.
//
//   - ErrUnavailable: a collaborator (remote engine, host surface) cannot be reached
//   - ErrInvalidState: a collaborator is in the wrong state for the operation
//   - ErrClosed: a stream or connection was closed before producing a value
var (
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
	ErrClosed       = errors.New("closed")
)
