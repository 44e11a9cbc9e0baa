// Package ws attaches UI hosts over WebSocket and presents verification
// sessions on them.
package ws

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"verifybridge/internal/bridge/surface"
	dErrors "verifybridge/pkg/domain-errors"
	"verifybridge/pkg/platform/httputil"
)

// Handler upgrades host connections and keeps the surface registry current.
type Handler struct {
	registry *surface.Registry
	verifier *TokenVerifier
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

type HandlerOption func(*Handler)

// WithVerifier requires hosts to present a valid token when attaching.
func WithVerifier(v *TokenVerifier) HandlerOption {
	return func(h *Handler) {
		h.verifier = v
	}
}

func WithCheckOrigin(check func(r *http.Request) bool) HandlerOption {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = check
	}
}

func NewHandler(registry *surface.Registry, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{
		registry: registry,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/host", h.HandleAttach)
}

// HandleAttach upgrades the request and makes the connection the current
// host surface until it disconnects.
func (h *Handler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var hostID string
	if h.verifier != nil {
		token := tokenFromRequest(r)
		if token == "" {
			h.logger.WarnContext(ctx, "host attach without token")
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing host token"))
			return
		}
		claims, err := h.verifier.Verify(token)
		if err != nil {
			h.logger.WarnContext(ctx, "host attach rejected", "error", err)
			httputil.WriteError(w, err)
			return
		}
		hostID = claims.HostID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "host upgrade failed", "error", err)
		return
	}

	reattach := hostID != ""
	if !reattach {
		hostID = uuid.NewString()
	}
	host := newHost(hostID, describePlatform(r.UserAgent()), conn, h.logger)

	if reattach {
		h.registry.Reattach(host)
	} else {
		h.registry.Attach(host)
	}

	go host.writePump()
	go func() {
		host.readPump()
		h.registry.Detach(host)
	}()
}
