// Package session runs a single verification attempt from start to its one
// delivered result.
//
// A Controller issues the engine start, watches the engine state stream for the
// first Ready or Error, presents UI on the attached host surface when ready,
// and resolves a one-shot gate from whichever completion path fires first:
// start failure, stream error, missing host surface, presentation failure or
// the presentation outcome. Signals arriving after resolution are dropped.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verifybridge/internal/bridge/gate"
	"verifybridge/internal/bridge/metrics"
	"verifybridge/internal/bridge/models"
	"verifybridge/internal/bridge/ports"
	"verifybridge/internal/bridge/result"
	"verifybridge/pkg/platform/sentinel"
	"verifybridge/pkg/requestcontext"
)

// Completion sources, used for logging and the dropped-resolution metric.
const (
	sourceStart        = "start"
	sourceState        = "state"
	sourceSurface      = "surface"
	sourcePresentation = "presentation"
)

var ErrAlreadyRun = errors.New("controller already run")

type Controller struct {
	engine    ports.Engine
	states    ports.StateStream
	presenter ports.Presenter
	surfaces  ports.SurfaceProvider

	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	attemptID string

	gate      *gate.Gate[models.BridgeResult]
	ran       atomic.Bool
	startedAt time.Time

	// phase orders a start failure against the decision to present.
	phase      sync.Mutex
	presenting bool
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = t
	}
}

// WithAttemptID sets the correlation id used in logs and spans.
func WithAttemptID(id string) Option {
	return func(c *Controller) {
		c.attemptID = id
	}
}

func New(engine ports.Engine, states ports.StateStream, presenter ports.Presenter, surfaces ports.SurfaceProvider, opts ...Option) (*Controller, error) {
	switch {
	case engine == nil:
		return nil, errors.New("engine is required")
	case states == nil:
		return nil, errors.New("engine state stream is required")
	case presenter == nil:
		return nil, errors.New("presenter is required")
	case surfaces == nil:
		return nil, errors.New("surface provider is required")
	}

	c := &Controller{
		engine:    engine,
		states:    states,
		presenter: presenter,
		surfaces:  surfaces,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer("verifybridge/internal/bridge/session"),
		gate:      gate.New[models.BridgeResult](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.attemptID == "" {
		c.attemptID = uuid.NewString()
	}
	return c, nil
}

// Run starts the attempt and blocks until its result is delivered. A
// Controller runs once. If ctx ends first Run returns ctx.Err(); the engine
// start and any presentation in progress are not cancelled.
func (c *Controller) Run(ctx context.Context, cmd models.StartCommand) (models.BridgeResult, error) {
	if !c.ran.CompareAndSwap(false, true) {
		return models.BridgeResult{}, fmt.Errorf("%w: %w", ErrAlreadyRun, sentinel.ErrInvalidState)
	}
	c.startedAt = time.Now()

	ctx, span := c.tracer.Start(ctx, "session.Run", trace.WithAttributes(
		attribute.String("attempt_id", c.attemptID),
		attribute.String("start_kind", string(cmd.Kind)),
	))
	defer span.End()

	// Collaborators keep running after the caller leaves. The attempt id
	// scopes engine states and sessions to this attempt.
	workCtx := requestcontext.WithAttemptID(context.WithoutCancel(ctx), c.attemptID)

	// Subscribe before start so no transition is missed. Without a stream
	// nothing could be presented, so the engine is not started.
	states, release, err := c.states.Subscribe(workCtx)
	if err != nil {
		c.logger.ErrorContext(ctx, "engine state stream unavailable", c.attrs(ctx, "error", err)...)
		c.resolve(ctx, sourceState, result.FromEngineError(err))
		res, _ := c.gate.Value()
		span.SetAttributes(attribute.String("result_type", string(res.Type)))
		return res, nil
	}
	go c.start(workCtx, cmd)
	go c.observe(ctx, workCtx, states, release)

	res, err := c.gate.Wait(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "caller left before verification resolved",
			c.attrs(ctx, "error", err)...)
		return models.BridgeResult{}, err
	}
	span.SetAttributes(attribute.String("result_type", string(res.Type)))
	return res, nil
}

// AttemptID returns the correlation id of this attempt.
func (c *Controller) AttemptID() string {
	return c.attemptID
}

func (c *Controller) start(ctx context.Context, cmd models.StartCommand) {
	defer func() {
		if r := recover(); r != nil {
			c.onStartFailure(ctx, fmt.Errorf("%v", r))
		}
	}()
	if err := c.engine.Start(ctx, cmd); err != nil {
		c.onStartFailure(ctx, err)
	}
}

// onStartFailure resolves with a generic failure unless UI is already being
// presented, in which case the presentation outcome owns the result.
func (c *Controller) onStartFailure(ctx context.Context, err error) {
	c.phase.Lock()
	defer c.phase.Unlock()
	if c.presenting {
		c.logger.WarnContext(ctx, "engine start failed during presentation",
			c.attrs(ctx, "error", err)...)
		c.drop(sourceStart)
		return
	}
	c.resolve(ctx, sourceStart, result.FromStartFailure(err))
}

// observe waits for the first Ready or Error addressed to this attempt. It
// stops early if the attempt resolves through another path or the caller
// goes away.
func (c *Controller) observe(callerCtx, ctx context.Context, states <-chan models.EngineState, release func()) {
	defer release()
	for {
		select {
		case <-c.gate.Done():
			return
		case <-callerCtx.Done():
			return
		case state, ok := <-states:
			if !ok {
				c.logger.WarnContext(ctx, "engine state stream closed before ready", c.attrs(ctx)...)
				return
			}
			if !state.BelongsTo(c.attemptID) {
				c.logger.DebugContext(ctx, "ignoring engine state for another attempt",
					c.attrs(ctx, "state", state.String(), "state_attempt_id", state.AttemptID)...)
				continue
			}
			c.logger.DebugContext(ctx, "engine state observed", c.attrs(ctx, "state", state.String())...)
			if !state.IsTerminal() {
				continue
			}
			release()
			if state.Status == models.EngineReady {
				c.onReady(ctx)
			} else {
				c.resolve(ctx, sourceState, result.FromEngineError(state.Cause))
			}
			return
		}
	}
}

func (c *Controller) onReady(ctx context.Context) {
	surface, ok := c.beginPresentation(ctx)
	if !ok {
		return
	}
	if c.metrics != nil {
		c.metrics.IncrementPresentation()
	}
	c.logger.InfoContext(ctx, "presenting verification UI",
		c.attrs(ctx, "surface_id", surface.ID(), "platform", surface.Platform())...)

	err := c.presenter.Present(ctx, surface, func(outcome models.VerificationOutcome) {
		c.resolve(ctx, sourcePresentation, result.FromOutcome(outcome))
	})
	if err != nil {
		c.resolve(ctx, sourcePresentation, result.Failed(result.ErrorTypeUnknown, err.Error()))
	}
}

// beginPresentation claims the attempt for presentation. It fails when the
// attempt already resolved or no host surface is attached.
func (c *Controller) beginPresentation(ctx context.Context) (ports.Surface, bool) {
	c.phase.Lock()
	defer c.phase.Unlock()

	if _, done := c.gate.Value(); done {
		c.drop(sourceState)
		return nil, false
	}
	surface := c.surfaces.Current()
	if surface == nil {
		c.resolve(ctx, sourceSurface, result.NoHostSurface())
		return nil, false
	}
	c.presenting = true
	return surface, true
}

func (c *Controller) resolve(ctx context.Context, source string, r models.BridgeResult) bool {
	if !c.gate.Resolve(r) {
		c.logger.DebugContext(ctx, "dropped completion for resolved attempt",
			c.attrs(ctx, "source", source, "type", r.Type)...)
		c.drop(source)
		return false
	}

	c.logger.InfoContext(ctx, "verification resolved",
		c.attrs(ctx,
			"source", source,
			"type", r.Type,
			"error_type", r.ErrorType,
			"session_id", r.SessionID,
			"duration_ms", time.Since(c.startedAt).Milliseconds(),
		)...)
	if c.metrics != nil {
		c.metrics.IncrementResult(string(r.Type), r.ErrorType)
		c.metrics.ObserveAttempt(c.startedAt)
	}
	return true
}

func (c *Controller) drop(source string) {
	if c.metrics != nil {
		c.metrics.IncrementDroppedResolution(source)
	}
}

func (c *Controller) attrs(ctx context.Context, args ...any) []any {
	args = append(args, "attempt_id", c.attemptID)
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	return args
}
