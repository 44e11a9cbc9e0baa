// Package remote is an engine adapter that opens verification sessions on a
// remote verification API and reports progress as engine states.
//
// Start publishes Starting, performs the API call, and then publishes either
// Ready (the opened session becomes the pending session) or Error with a
// VerificationError describing what went wrong. Start itself only returns an
// error when it fails before publishing anything.
//
// States and pending sessions are keyed by the attempt id carried on the
// start context (requestcontext.WithAttemptID), so attempts sharing one
// engine, or one Redis channel across replicas, never see each other's
// sessions.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"verifybridge/internal/bridge/models"
	dErrors "verifybridge/pkg/domain-errors"
	"verifybridge/pkg/platform/circuit"
	"verifybridge/pkg/platform/sentinel"
	"verifybridge/pkg/requestcontext"
)

// StateSink receives engine state transitions.
type StateSink interface {
	Publish(ctx context.Context, state models.EngineState) error
}

type Engine struct {
	baseURL string
	apiKey  string
	client  *http.Client
	sink    StateSink
	breaker *circuit.Breaker
	logger  *slog.Logger
	tracer  trace.Tracer

	mu      sync.RWMutex
	pending map[string]pendingSession
}

// pendingTTL bounds how long an unpresented session is kept.
const pendingTTL = 15 * time.Minute

type pendingSession struct {
	session  models.PendingSession
	openedAt time.Time
}

type Option func(*Engine)

func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		e.client = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(e *Engine) {
		e.breaker = b
	}
}

func New(baseURL, apiKey string, sink StateSink, opts ...Option) (*Engine, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("engine base URL is required")
	}
	if sink == nil {
		return nil, errors.New("engine state sink is required")
	}
	e := &Engine{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		sink:    sink,
		breaker: circuit.New("remote-engine"),
		tracer:  otel.Tracer("verifybridge/internal/engine/remote"),
		pending: make(map[string]pendingSession),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Start opens a verification session for cmd.
func (e *Engine) Start(ctx context.Context, cmd models.StartCommand) error {
	ctx, span := e.tracer.Start(ctx, "remote.Start", trace.WithAttributes(
		attribute.String("start_kind", string(cmd.Kind)),
	))
	defer span.End()

	if !e.breaker.Allow() {
		span.SetStatus(codes.Error, "circuit open")
		return dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeUnavailable, "verification service unavailable")
	}

	path, body, err := e.buildRequest(cmd)
	if err != nil {
		return err
	}

	attemptID := requestcontext.AttemptID(ctx)
	e.clearPending(attemptID)
	if err := e.sink.Publish(ctx, models.Starting().ForAttempt(attemptID)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "publish starting state")
	}

	session, verr := e.openSession(ctx, path, body, cmd.Configuration)
	if verr != nil {
		span.SetStatus(codes.Error, verr.Error())
		e.recordOutcome(verr)
		return e.publish(ctx, models.Errored(verr).ForAttempt(attemptID))
	}

	e.breaker.RecordSuccess()
	e.setPending(attemptID, session)
	span.SetAttributes(attribute.String("session_id", session.SessionID))
	return e.publish(ctx, models.Ready().ForAttempt(attemptID))
}

// PendingSession returns the session opened for the attempt on ctx.
func (e *Engine) PendingSession(ctx context.Context) (models.PendingSession, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.pending[requestcontext.AttemptID(ctx)]
	if !ok {
		return models.PendingSession{}, false
	}
	return p.session, true
}

func (e *Engine) buildRequest(cmd models.StartCommand) (string, []byte, error) {
	var (
		path    string
		payload any
	)
	switch cmd.Kind {
	case models.StartByToken:
		path = "/v2/session/resume/"
		payload = resumeSessionRequest{SessionToken: cmd.Token, Language: languageCode(cmd.Configuration)}
	case models.StartByWorkflow:
		path = "/v2/session/"
		payload = createSessionRequest{
			WorkflowID:      cmd.WorkflowID,
			VendorData:      cmd.VendorData,
			Metadata:        cmd.Metadata,
			Language:        languageCode(cmd.Configuration),
			ContactDetails:  cmd.Contact,
			ExpectedDetails: cmd.Expected,
		}
	default:
		return "", nil, dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("unsupported start kind %q", cmd.Kind))
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode session request")
	}
	return path, body, nil
}

func (e *Engine) openSession(ctx context.Context, path string, body []byte, cfg *models.Configuration) (*models.PendingSession, *models.VerificationError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &models.VerificationError{Kind: models.ErrorUnknown, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.apiKey != "" {
		req.Header.Set("x-api-key", e.apiKey)
	}

	verbose := cfg != nil && cfg.LoggingEnabled
	if verbose {
		e.debug(ctx, "opening verification session", "path", path)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &models.VerificationError{Kind: models.ErrorNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &models.VerificationError{Kind: models.ErrorNetwork, Message: err.Error()}
	}
	if verbose {
		e.debug(ctx, "verification API responded", "path", path, "status", resp.StatusCode)
	}

	if resp.StatusCode >= 300 {
		return nil, classifyHTTPError(resp.StatusCode, raw)
	}

	var sr sessionResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return nil, &models.VerificationError{Kind: models.ErrorAPI, Message: "malformed session response"}
	}
	if sr.SessionID == "" || sr.URL == "" {
		return nil, &models.VerificationError{Kind: models.ErrorAPI, Message: "session response missing session_id or url"}
	}

	session := &models.PendingSession{SessionID: sr.SessionID, URL: sr.URL}
	if cfg != nil {
		session.Language = cfg.Language
		session.FontFamily = cfg.FontFamily
	}
	return session, nil
}

func classifyHTTPError(status int, raw []byte) *models.VerificationError {
	var body apiErrorResponse
	_ = json.Unmarshal(raw, &body)
	msg := body.text()
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return &models.VerificationError{Kind: models.ErrorSessionExpired, Message: msg}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &models.VerificationError{Kind: models.ErrorNotInitialized, Message: msg}
	case status >= 500:
		return &models.VerificationError{Kind: models.ErrorNetwork, Message: msg}
	default:
		return &models.VerificationError{Kind: models.ErrorAPI, Message: msg}
	}
}

// recordOutcome feeds the breaker. Only transport-level failures count; a
// rejected request proves the service is up.
func (e *Engine) recordOutcome(verr *models.VerificationError) {
	if verr.Kind != models.ErrorNetwork {
		e.breaker.RecordSuccess()
		return
	}
	if _, change := e.breaker.RecordFailure(); change.Opened && e.logger != nil {
		e.logger.Warn("verification service circuit opened", "breaker", e.breaker.Name())
	}
}

func (e *Engine) publish(ctx context.Context, state models.EngineState) error {
	if err := e.sink.Publish(ctx, state); err != nil {
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "failed to publish engine state", "state", state.String(), "error", err)
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "publish engine state")
	}
	return nil
}

func (e *Engine) setPending(attemptID string, s *models.PendingSession) {
	now := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, p := range e.pending {
		if now.Sub(p.openedAt) > pendingTTL {
			delete(e.pending, id)
		}
	}
	e.pending[attemptID] = pendingSession{session: *s, openedAt: now}
}

func (e *Engine) clearPending(attemptID string) {
	e.mu.Lock()
	delete(e.pending, attemptID)
	e.mu.Unlock()
}

func (e *Engine) debug(ctx context.Context, msg string, args ...any) {
	if e.logger != nil {
		e.logger.DebugContext(ctx, msg, args...)
	}
}
