// Package httpx holds the JSON and error helpers shared by the HTTP handlers.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"stockflow/internal/pkg/apperr"
	"stockflow/internal/pkg/logger"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StartSpan extracts the caller's trace context and opens a server span.
func StartSpan(r *http.Request, tracer trace.Tracer, name string) (context.Context, trace.Span) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps err onto a status code and an ErrorResponse.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Ctx(ctx).Error().Err(err).Int("status", status).Msg("request failed")
	}
	WriteJSON(w, status, ErrorResponse{Code: apperr.Code(err), Message: err.Error()})
}

// PathInt64 parses a numeric path value.
func PathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, apperr.Validation("path parameter %s must be an integer, got %q", name, r.PathValue(name))
	}
	return v, nil
}

// QueryInt parses a required integer query parameter.
func QueryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("query parameter %s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// DecodeJSON decodes the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}
