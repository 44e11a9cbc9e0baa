// Package channel dispatches boundary method calls to verification attempts.
package channel

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"verifybridge/internal/bridge/metrics"
	"verifybridge/internal/bridge/models"
	"verifybridge/internal/bridge/ports"
	"verifybridge/internal/bridge/request"
	"verifybridge/internal/bridge/session"
	dErrors "verifybridge/pkg/domain-errors"
	"verifybridge/pkg/requestcontext"
)

// Wire codes for the two boundary-level failures.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotImplemented  = "NOT_IMPLEMENTED"
	CodeInternal        = "INTERNAL"
)

type Dispatcher struct {
	engine    ports.Engine
	states    ports.StateStream
	presenter ports.Presenter
	surfaces  ports.SurfaceProvider
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func New(engine ports.Engine, states ports.StateStream, presenter ports.Presenter, surfaces ports.SurfaceProvider, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine:    engine,
		states:    states,
		presenter: presenter,
		surfaces:  surfaces,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call handles one boundary method call. Business failures come back as a
// failed BridgeResult with a nil error; only invalid arguments and unknown
// methods return an error.
func (d *Dispatcher) Call(ctx context.Context, method string, args request.Args) (models.BridgeResult, error) {
	cmd, err := parse(method, args)
	if err != nil {
		d.logger.WarnContext(ctx, "rejected method call",
			"method", method,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return models.BridgeResult{}, err
	}

	attemptID := uuid.NewString()
	ctrl, err := session.New(d.engine, d.states, d.presenter, d.surfaces,
		session.WithLogger(d.logger),
		session.WithMetrics(d.metrics),
		session.WithAttemptID(attemptID),
	)
	if err != nil {
		return models.BridgeResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "bridge is not configured")
	}

	if d.metrics != nil {
		d.metrics.IncrementAttemptStarted(method)
	}
	start := requestcontext.Now(ctx)
	d.logAudit(ctx, "verification_started",
		"attempt_id", attemptID,
		"method", method,
		"start_kind", string(cmd.Kind),
	)

	res, err := ctrl.Run(ctx, cmd)
	if err != nil {
		return models.BridgeResult{}, dErrors.Wrap(err, dErrors.CodeTimeout, "caller went away before verification resolved")
	}

	attrs := []any{
		"attempt_id", attemptID,
		"method", method,
		"type", string(res.Type),
		"error_type", res.ErrorType,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if res.HasSession() {
		attrs = append(attrs, "session_id", res.SessionID, "session_status", res.Status)
	}
	d.logAudit(ctx, "verification_resolved", attrs...)
	return res, nil
}

func parse(method string, args request.Args) (models.StartCommand, error) {
	switch method {
	case request.MethodStartVerification:
		return request.ParseStartVerification(args)
	case request.MethodStartVerificationWithWorkflow:
		return request.ParseStartVerificationWithWorkflow(args)
	default:
		return models.StartCommand{}, dErrors.New(dErrors.CodeNotImplemented, "method not implemented: "+method)
	}
}

// WireCode returns the boundary error code for err.
func WireCode(err error) string {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidArgument:
		return CodeInvalidArgument
	case dErrors.CodeNotImplemented:
		return CodeNotImplemented
	default:
		return CodeInternal
	}
}

func (d *Dispatcher) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if clientIP := requestcontext.ClientIP(ctx); clientIP != "" {
		attributes = append(attributes, "client_ip", clientIP)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	d.logger.InfoContext(ctx, event, args...)
}
