package ws

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"verifybridge/internal/bridge/models"
	"verifybridge/internal/bridge/ports"
	dErrors "verifybridge/pkg/domain-errors"
	"verifybridge/pkg/platform/sentinel"
)

// SessionSource exposes the session the engine has opened for presentation.
type SessionSource interface {
	PendingSession(ctx context.Context) (models.PendingSession, bool)
}

// Presenter sends the engine's pending session to a WebSocket host and
// forwards the host's outcome frame to the caller's callback.
type Presenter struct {
	sessions SessionSource
	logger   *slog.Logger
}

func NewPresenter(sessions SessionSource, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Presenter{sessions: sessions, logger: logger}
}

func (p *Presenter) Present(ctx context.Context, surface ports.Surface, onOutcome func(models.VerificationOutcome)) error {
	host, ok := surface.(*Host)
	if !ok {
		return dErrors.New(dErrors.CodeInternal, "surface cannot present verification UI")
	}
	session, ok := p.sessions.PendingSession(ctx)
	if !ok {
		return dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeInternal, "engine has no session to present")
	}

	frame := presentFrame{
		Type:      framePresent,
		RequestID: uuid.NewString(),
		SessionID: session.SessionID,
		URL:       session.URL,
	}
	if session.Language != nil {
		frame.Language = session.Language.Code()
	}
	if session.FontFamily != nil {
		frame.FontFamily = *session.FontFamily
	}

	if err := host.present(frame, onOutcome); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "present frame sent",
		"surface_id", host.ID(),
		"request_id", frame.RequestID,
		"session_id", frame.SessionID,
	)
	return nil
}

