// Package quoteapi implements the QuoteSource port against the remote
// bridge quoting HTTP API.
package quoteapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	liquidityApp "github.com/himanshuranjan007/data-provider-playground-lz0/business/liquidity/app"
	"github.com/himanshuranjan007/data-provider-playground-lz0/business/liquidity/domain"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/apperror"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/circuitbreaker"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/httpclient"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/logger"
)

const (
	tracerName = "quoteapi"
	meterName  = "quoteapi"

	quotePath = "/v1/quote"
)

// Ensure Client implements the QuoteSource port.
var _ liquidityApp.QuoteSource = (*Client)(nil)

// ClientConfig holds the remote endpoint settings.
type ClientConfig struct {
	BaseURL        string
	RequestTimeout time.Duration

	// The remote protocol requires sender and recipient addresses on
	// every quote request even for pure probes; placeholders suffice.
	SenderAddress    string
	RecipientAddress string
}

// clientMetrics holds OTEL metric instruments.
type clientMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteErrors  metric.Int64Counter
	quoteLatency metric.Float64Histogram
}

// Client fetches quotes over HTTP, classifying every failure into the
// apperror taxonomy the estimator and retry layer rely on.
type Client struct {
	http   *httpclient.Client
	config ClientConfig
	log    logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[domain.Quote]

	tracer  trace.Tracer
	metrics *clientMetrics
}

// NewClient creates a quote API client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	httpClient, err := httpclient.New(httpclient.Options{
		BaseURL:      cfg.BaseURL,
		Timeout:      cfg.RequestTimeout,
		ProviderName: "quoteapi",
		Headers:      map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	c := &Client{
		http:   httpClient,
		config: cfg,
		log:    log,
		tracer: otel.Tracer(tracerName),
	}

	cbCfg := circuitbreaker.DefaultConfig("quote-api")
	// Domain no-quote and client errors are answers, not outages; only
	// transient failures count against the breaker.
	cbCfg.IsSuccessful = func(err error) bool {
		return err == nil || !apperror.IsTransient(err)
	}
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	c.cb = circuitbreaker.New[domain.Quote](cbCfg)

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.quotesTotal, err = meter.Int64Counter(
		"quote_requests_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	c.metrics.quoteErrors, err = meter.Int64Counter(
		"quote_request_errors_total",
		metric.WithDescription("Total quote request failures by code"),
	)
	if err != nil {
		return err
	}

	c.metrics.quoteLatency, err = meter.Float64Histogram(
		"quote_request_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetQuote implements the QuoteSource port.
func (c *Client) GetQuote(ctx context.Context, route domain.Route, srcAmount *big.Int) (domain.Quote, error) {
	if srcAmount == nil || srcAmount.Sign() <= 0 {
		return domain.Quote{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("source amount must be positive"))
	}

	ctx, span := c.tracer.Start(ctx, "quoteapi.get_quote",
		trace.WithAttributes(
			attribute.String("route", route.String()),
			attribute.String("src_amount", srcAmount.String()),
		),
	)
	defer span.End()

	start := time.Now()
	quote, err := c.cb.Execute(func() (domain.Quote, error) {
		return c.fetchQuote(ctx, route, srcAmount)
	})

	c.metrics.quotesTotal.Add(ctx, 1)
	c.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.quoteErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("code", string(apperror.GetCode(err))),
		))
		return domain.Quote{}, err
	}

	return quote, nil
}

func (c *Client) fetchQuote(ctx context.Context, route domain.Route, srcAmount *big.Int) (domain.Quote, error) {
	var result quoteResponse

	resp, err := c.http.NewRequest().
		SetQueryParam("srcChainId", route.Src.ChainID).
		SetQueryParam("dstChainId", route.Dst.ChainID).
		SetQueryParam("srcToken", route.Src.AssetID).
		SetQueryParam("dstToken", route.Dst.AssetID).
		SetQueryParam("srcAmount", srcAmount.String()).
		SetQueryParam("sender", c.config.SenderAddress).
		SetQueryParam("recipient", c.config.RecipientAddress).
		SetErrorHandler(classifyStatus).
		SetResult(&result).
		Get(ctx, quotePath)
	if err != nil {
		return domain.Quote{}, classifyTransport(err)
	}

	// Some deployments report "no route" inside a 200 body.
	if result.Error != nil {
		if result.Error.isNoQuote() {
			return domain.Quote{}, apperror.New(apperror.CodeNoQuote,
				apperror.WithContext(result.Error.Message))
		}
		return domain.Quote{}, apperror.New(apperror.CodeMalformedResponse,
			apperror.WithContext(fmt.Sprintf("unexpected error payload: %s", result.Error.Message)),
			apperror.WithStatusCode(resp.StatusCode))
	}
	if result.Route == nil {
		return domain.Quote{}, apperror.New(apperror.CodeNoQuote,
			apperror.WithContext("response carried no route"))
	}

	return result.Route.toQuote()
}

// classifyStatus maps a non-2xx response into the error taxonomy. A 404
// or 400 whose body carries a no-route marker is the domain no-quote
// signal; everything else keeps its transport classification.
func classifyStatus(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}

	if statusCode == http.StatusNotFound || statusCode == http.StatusBadRequest {
		var payload quoteResponse
		if err := json.Unmarshal(body, &payload); err == nil && payload.Error.isNoQuote() {
			return apperror.New(apperror.CodeNoQuote,
				apperror.WithStatusCode(statusCode),
				apperror.WithContext(payload.Error.Message))
		}
	}

	return apperror.FromStatus(statusCode, quotePath)
}

// classifyTransport maps request-level failures: timeouts are
// transient, caller-driven cancellation passes through untouched,
// decode failures are schema mismatches, the rest is treated as the
// service being unreachable.
func classifyTransport(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperror.New(apperror.CodeServiceTimeout, apperror.WithCause(err))
	}

	var jsonErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	if errors.As(err, &jsonErr) || errors.As(err, &syntaxErr) {
		return apperror.New(apperror.CodeMalformedResponse, apperror.WithCause(err))
	}

	return apperror.New(apperror.CodeServiceUnavailable, apperror.WithCause(err))
}
