package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/storyweaver/pkg/generator"
	"github.com/jwebster45206/storyweaver/pkg/playback"
	"github.com/jwebster45206/storyweaver/pkg/story"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Error kinds reported alongside the message.
const (
	kindNotFound    = "not_found"
	kindCannotStart = "cannot_start"
	kindBusy        = "busy"
	kindBadRequest  = "bad_request"
	kindUnavailable = "unavailable"
	kindConflict    = "conflict"
)

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err, "status", status)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg, kind string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg, Kind: kind})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, logger *slog.Logger, allowed string) {
	logger.Warn("Method not allowed", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Allow", allowed)
	writeError(w, logger, http.StatusMethodNotAllowed,
		fmt.Sprintf("Method not allowed. Supported: %s.", allowed), "")
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v alone.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// writeDomainError maps engine, store and generator errors onto HTTP.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err, "status", status)
	} else {
		logger.Debug("Request rejected", "error", err, "status", status)
	}
	msg := err.Error()
	var cs *playback.CannotStartError
	if errors.As(err, &cs) {
		msg = cs.Reason
	}
	writeError(w, logger, status, msg, kind)
}

func statusFor(err error) (int, string) {
	var genErr *generator.Error
	switch {
	case errors.Is(err, story.ErrNotFound):
		return http.StatusNotFound, kindNotFound
	case errors.Is(err, playback.ErrCannotStart):
		return http.StatusConflict, kindCannotStart
	case errors.Is(err, playback.ErrBusy):
		return http.StatusTooManyRequests, kindBusy
	case errors.Is(err, playback.ErrEmptyAction), errors.Is(err, playback.ErrEmptyBody),
		errors.Is(err, generator.ErrInvalidRequest):
		return http.StatusBadRequest, kindBadRequest
	case errors.Is(err, story.ErrStale):
		return http.StatusConflict, kindConflict
	case errors.Is(err, playback.ErrNoGenerator):
		return http.StatusServiceUnavailable, kindUnavailable
	case errors.As(err, &genErr), errors.Is(err, generator.ErrMalformedPayload),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway, string(generator.KindOf(err))
	default:
		return http.StatusInternalServerError, ""
	}
}
