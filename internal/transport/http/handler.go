package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"verifybridge/internal/bridge/channel"
	"verifybridge/internal/bridge/models"
	"verifybridge/internal/bridge/request"
	dErrors "verifybridge/pkg/domain-errors"
	"verifybridge/pkg/platform/httputil"
	"verifybridge/pkg/requestcontext"
)

const maxArgsBytes = 1 << 20

// MethodCaller runs one boundary method call to completion.
type MethodCaller interface {
	Call(ctx context.Context, method string, args request.Args) (models.BridgeResult, error)
}

// Handler exposes the method channel over HTTP.
type Handler struct {
	caller MethodCaller
	logger *slog.Logger
}

func NewHandler(caller MethodCaller, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{caller: caller, logger: logger}
}

// Register mounts the method channel on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/methods/{method}", h.HandleMethodCall)
}

// HandleMethodCall handles POST /v1/methods/{method}. The response is held
// open until the verification attempt resolves.
func (h *Handler) HandleMethodCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	method := chi.URLParam(r, "method")
	start := time.Now()

	args, err := decodeArgs(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid method arguments",
			"request_id", requestID,
			"method", method,
			"error", err,
		)
		httputil.WriteErrorCode(w, http.StatusBadRequest, channel.CodeInvalidArgument, "arguments must be a JSON object")
		return
	}

	result, err := h.caller.Call(ctx, method, args)
	if err != nil {
		writeCallError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "method call answered",
		"request_id", requestID,
		"method", method,
		"type", string(result.Type),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

func decodeArgs(r *http.Request) (request.Args, error) {
	var args request.Args
	err := json.NewDecoder(io.LimitReader(r.Body, maxArgsBytes)).Decode(&args)
	if errors.Is(err, io.EOF) {
		return request.Args{}, nil
	}
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = request.Args{}
	}
	return args, nil
}

func writeCallError(w http.ResponseWriter, err error) {
	code := channel.WireCode(err)
	switch code {
	case channel.CodeInvalidArgument:
		httputil.WriteErrorCode(w, http.StatusBadRequest, code, errorMessage(err))
	case channel.CodeNotImplemented:
		httputil.WriteErrorCode(w, http.StatusNotFound, code, errorMessage(err))
	default:
		httputil.WriteErrorCode(w, http.StatusInternalServerError, code, "")
	}
}

func errorMessage(err error) string {
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return err.Error()
}
