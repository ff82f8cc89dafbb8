package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ErrorHandler inspects a response and decides whether it is an error.
// It runs after the body has been read, before result decoding.
type ErrorHandler func(statusCode int, body []byte) error

// Request builds and executes a single HTTP call.
type Request struct {
	client       *Client
	headers      map[string]string
	queryParams  url.Values
	result       any
	errorHandler ErrorHandler
}

// Response carries the raw response plus the decoded body.
type Response struct {
	StatusCode int
	body       []byte
}

// Body returns the raw response body.
func (r *Response) Body() []byte {
	return r.body
}

// IsSuccess reports whether the status code is below 400.
func (r *Response) IsSuccess() bool {
	return r.StatusCode < 400
}

// SetHeader sets a single header.
func (r *Request) SetHeader(key, value string) *Request {
	r.headers[key] = value
	return r
}

// SetQueryParam sets a single query parameter.
func (r *Request) SetQueryParam(key, value string) *Request {
	if r.queryParams == nil {
		r.queryParams = url.Values{}
	}
	r.queryParams.Set(key, value)
	return r
}

// SetResult sets the destination for JSON decoding of a 2xx body.
func (r *Request) SetResult(result any) *Request {
	r.result = result
	return r
}

// SetErrorHandler installs a response error hook.
func (r *Request) SetErrorHandler(handler ErrorHandler) *Request {
	r.errorHandler = handler
	return r
}

// Get executes a GET request against path, relative to the base URL.
func (r *Request) Get(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, path)
}

func (r *Request) execute(ctx context.Context, method, path string) (*Response, error) {
	c := r.client

	ctx, span := c.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", path),
			attribute.String("provider", c.providerName),
		),
	)
	defer span.End()

	fullURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid url")
		return nil, fmt.Errorf("join url: %w", err)
	}
	if len(r.queryParams) > 0 {
		fullURL = fullURL + "?" + r.queryParams.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		r.recordFailure(ctx, span, err)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		r.recordFailure(ctx, span, err)
		return nil, fmt.Errorf("read response body: %w", err)
	}

	response := &Response{StatusCode: resp.StatusCode, body: body}

	if resp.StatusCode >= 400 {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}

	if r.errorHandler != nil {
		if handlerErr := r.errorHandler(resp.StatusCode, body); handlerErr != nil {
			span.SetStatus(codes.Error, handlerErr.Error())
			r.count(ctx, false)
			return response, handlerErr
		}
	}

	if r.result != nil && response.IsSuccess() && len(body) > 0 {
		if err := json.Unmarshal(body, r.result); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode response")
			r.count(ctx, false)
			return response, fmt.Errorf("decode response: %w", err)
		}
	}

	r.count(ctx, response.IsSuccess())
	return response, nil
}

func (r *Request) recordFailure(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	r.count(ctx, false)
}

func (r *Request) count(ctx context.Context, success bool) {
	r.client.requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", r.client.providerName),
		attribute.Bool("success", success),
	))
}
