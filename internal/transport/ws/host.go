package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"verifybridge/internal/bridge/models"
	dErrors "verifybridge/pkg/domain-errors"
	"verifybridge/pkg/platform/sentinel"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 << 10
	sendBuffer     = 32

	detachedMessage = "host surface detached before verification finished"
)

// Host is an attached WebSocket connection able to present verification UI.
type Host struct {
	id       string
	platform string
	conn     *websocket.Conn
	logger   *slog.Logger

	send chan []byte
	done chan struct{}

	mu      sync.Mutex
	closed  bool
	pending map[string]func(models.VerificationOutcome)
}

func newHost(id, platform string, conn *websocket.Conn, logger *slog.Logger) *Host {
	return &Host{
		id:       id,
		platform: platform,
		conn:     conn,
		logger:   logger,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		pending:  make(map[string]func(models.VerificationOutcome)),
	}
}

func (h *Host) ID() string       { return h.id }
func (h *Host) Platform() string { return h.platform }

// present registers onOutcome under the frame's request id and queues the frame.
func (h *Host) present(frame presentFrame, onOutcome func(models.VerificationOutcome)) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode present frame")
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return dErrors.Wrap(sentinel.ErrClosed, dErrors.CodeUnavailable, "host surface is closed")
	}
	h.pending[frame.RequestID] = onOutcome
	h.mu.Unlock()

	select {
	case h.send <- data:
		return nil
	default:
		h.take(frame.RequestID)
		return dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeUnavailable, "host surface is not keeping up")
	}
}

// take removes and returns the callback for requestID.
func (h *Host) take(requestID string) func(models.VerificationOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cb := h.pending[requestID]
	delete(h.pending, requestID)
	return cb
}

// shutdown closes the host and fails every presentation still waiting.
func (h *Host) shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.done)
	waiting := h.pending
	h.pending = map[string]func(models.VerificationOutcome){}
	h.mu.Unlock()

	for requestID, cb := range waiting {
		h.logger.Warn("host detached with presentation in progress", "surface_id", h.id, "request_id", requestID)
		cb(models.Failed(models.VerificationError{Kind: models.ErrorUnknown, Message: detachedMessage}, nil))
	}
}

func (h *Host) readPump() {
	defer func() {
		h.shutdown()
		h.conn.Close()
	}()

	h.conn.SetReadLimit(maxMessageSize)
	_ = h.conn.SetReadDeadline(time.Now().Add(pongWait))
	h.conn.SetPongHandler(func(string) error {
		return h.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := h.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("host connection closed unexpectedly", "surface_id", h.id, "error", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.logger.Warn("dropping malformed host frame", "surface_id", h.id, "error", err)
			continue
		}
		if frame.Type != frameOutcome {
			h.logger.Debug("ignoring host frame", "surface_id", h.id, "type", frame.Type)
			continue
		}

		cb := h.take(frame.RequestID)
		if cb == nil {
			h.logger.Warn("outcome for unknown presentation", "surface_id", h.id, "request_id", frame.RequestID)
			continue
		}
		cb(frame.Outcome.toOutcome())
	}
}

func (h *Host) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.conn.Close()
	}()

	for {
		select {
		case message := <-h.send:
			_ = h.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := h.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = h.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := h.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-h.done:
			_ = h.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = h.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
