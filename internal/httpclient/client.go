// Package httpclient provides an OTEL-instrumented HTTP client used by
// the remote API adapters.
package httpclient

import (
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	meterName  = "httpclient"
	tracerName = "httpclient"
)

// Client issues instrumented requests against a single base URL.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	defaultHeaders map[string]string
	providerName   string
	tracer         trace.Tracer
	requestCounter metric.Int64Counter
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	Headers      map[string]string
	ProviderName string // label attached to metrics and spans
	Transport    http.RoundTripper
}

// New creates an instrumented client. The transport is wrapped with
// otelhttp so every outbound call produces a client span.
func New(opts Options) (*Client, error) {
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxConnsPerHost: defaultMaxConnsPerHost,
			IdleConnTimeout: defaultIdleConnTimeout,
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	providerName := opts.ProviderName
	if providerName == "" {
		providerName = "default"
	}

	meter := otel.Meter(meterName)
	requestCounter, err := meter.Int64Counter(
		"http_client_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		baseURL:        opts.BaseURL,
		defaultHeaders: opts.Headers,
		providerName:   providerName,
		tracer:         otel.Tracer(tracerName),
		requestCounter: requestCounter,
	}, nil
}

// NewRequest returns a request builder carrying the client defaults.
func (c *Client) NewRequest() *Request {
	headers := make(map[string]string, len(c.defaultHeaders))
	for k, v := range c.defaultHeaders {
		headers[k] = v
	}
	return &Request{
		client:  c,
		headers: headers,
	}
}
