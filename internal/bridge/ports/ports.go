// Package ports declares the collaborators the verification bridge consumes.
// Implementations live in internal/engine and internal/transport.
package ports

import (
	"context"

	"verifybridge/internal/bridge/models"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// Engine starts verification sessions. Start may block while the session is
// being opened; progress is reported on the engine's StateStream.
type Engine interface {
	Start(ctx context.Context, cmd models.StartCommand) error
}

// StateStream is a hot, non-replaying stream of engine states. Only states
// emitted after Subscribe returns are delivered. The returned cancel func
// releases the subscription and may be called more than once. Subscribe fails
// when the stream cannot be joined; no channel is returned in that case.
type StateStream interface {
	Subscribe(ctx context.Context) (<-chan models.EngineState, func(), error)
}

// Surface is an attached host able to render verification UI.
type Surface interface {
	ID() string
	Platform() string
}

// SurfaceProvider returns the currently attached host surface, or nil.
type SurfaceProvider interface {
	Current() Surface
}

// Presenter shows verification UI on a surface. onOutcome is invoked at most
// once with the terminal outcome, possibly from another goroutine and possibly
// after Present returns.
type Presenter interface {
	Present(ctx context.Context, surface Surface, onOutcome func(models.VerificationOutcome)) error
}
