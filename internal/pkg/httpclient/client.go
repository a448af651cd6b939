// Package httpclient is a traced REST client on top of resty.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StatusError is a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Retryable reports whether the server side failed.
func (e *StatusError) Retryable() bool { return e.StatusCode >= http.StatusInternalServerError }

// TransportError is a failure before any response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error   { return e.Err }
func (e *TransportError) Retryable() bool { return true }

// DecodeError is a 2xx response whose body could not be decoded.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response of %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error   { return e.Err }
func (e *DecodeError) Retryable() bool { return false }

// Request describes one call relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
}

type Client struct {
	rest    *resty.Client
	baseURL string
	tracer  trace.Tracer
}

// NewClient creates a client for one upstream service.
func NewClient(baseURL string, timeout time.Duration) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			otel.GetTextMapPropagator().Inject(r.Context(), propagation.HeaderCarrier(r.Header))
			return nil
		})

	return &Client{
		rest:    rest,
		baseURL: baseURL,
		tracer:  otel.Tracer("stockflow/httpclient"),
	}
}

// Do executes req and decodes a JSON response into out (when out is non-nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	ctx, span := c.tracer.Start(ctx, "http.client "+req.Method+" "+req.Path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	r := c.rest.R().SetContext(ctx)
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	url := c.baseURL + req.Path
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.url", url),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), "%s %s", req.Method, url)
		}
		return &TransportError{Method: req.Method, URL: url, Err: err}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	if resp.IsError() {
		statusErr := &StatusError{
			Method:     req.Method,
			URL:        url,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
		span.RecordError(statusErr)
		span.SetStatus(codes.Error, statusErr.Error())
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		span.RecordError(err)
		return &DecodeError{URL: url, Err: err}
	}
	return nil
}

// Forward executes req and returns the upstream status and body untouched.
// Only transport failures are returned as errors.
func (c *Client) Forward(ctx context.Context, req Request) (int, []byte, error) {
	ctx, span := c.tracer.Start(ctx, "http.client "+req.Method+" "+req.Path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	r := c.rest.R().SetContext(ctx)
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}
	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return 0, nil, &TransportError{Method: req.Method, URL: c.baseURL + req.Path, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	return resp.StatusCode(), resp.Body(), nil
}
