package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/vncsmyrnk/elections/internal/core/domain"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

var errorStatuses = []struct {
	kind   error
	status int
	name   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrNotClosed, http.StatusConflict, "not_closed"},
	{domain.ErrUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
}

// Responder writes JSON bodies and the error envelope. Internal error
// detail is only exposed when debug is on.
type Responder struct {
	logger *slog.Logger
	debug  bool
}

func NewResponder(logger *slog.Logger, debug bool) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{logger: logger, debug: debug}
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.logger.Warn("failed to encode response", "event", "elections_http_encode_failed", "error", err)
	}
}

func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorStatuses {
		if errors.Is(err, m.kind) {
			if m.status == http.StatusServiceUnavailable {
				w.Header().Set("Retry-After", "1")
			}
			rs.JSON(w, m.status, errorEnvelope{Error: errorBody{Kind: m.name, Message: domain.ReasonOf(err)}})
			return
		}
	}

	rs.logger.Error("request failed",
		"event", "elections_http_internal_error",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	)
	message := domain.ErrInternal.Error()
	if rs.debug {
		message = err.Error()
	}
	rs.JSON(w, http.StatusInternalServerError, errorEnvelope{Error: errorBody{Kind: "internal", Message: message}})
}

func (rs *Responder) Unauthorized(w http.ResponseWriter) {
	rs.JSON(w, http.StatusUnauthorized, errorEnvelope{Error: errorBody{Kind: "unauthorized", Message: "missing or invalid access token"}})
}
