package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vidtube/backend/internal/apierr"
	"github.com/vidtube/backend/internal/logging"
)

// envelope is the uniform response shape for every endpoint, success or
// failure.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(ctx, w, envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := apierr.StatusOf(err)
	writeEnvelope(ctx, w, envelope{
		StatusCode: status,
		Data:       nil,
		Message:    apierr.MessageOf(err),
		Success:    false,
	})
}

func writeEnvelope(ctx context.Context, w http.ResponseWriter, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.StatusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", body.StatusCode, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case body.StatusCode >= http.StatusInternalServerError:
		logger.Error("request failed", "status", body.StatusCode, "message", body.Message)
	case body.StatusCode >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", body.StatusCode, "message", body.Message)
	}
}
