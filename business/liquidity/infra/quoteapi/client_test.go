package quoteapi

import (
	"context"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/himanshuranjan007/data-provider-playground-lz0/business/liquidity/domain"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/apperror"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/logger"
)

var clientTestRoute = domain.Route{
	Src: domain.Asset{ChainID: "1", AssetID: "0xaaa", Symbol: "USDC", Decimals: 6},
	Dst: domain.Asset{ChainID: "42161", AssetID: "0xbbb", Symbol: "USDC", Decimals: 6},
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	client, err := NewClient(ClientConfig{
		BaseURL:          server.URL,
		RequestTimeout:   2 * time.Second,
		SenderAddress:    "0x0000000000000000000000000000000000000001",
		RecipientAddress: "0x0000000000000000000000000000000000000001",
	}, log)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestGetQuoteSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("srcChainId") != "1" || q.Get("dstChainId") != "42161" {
			t.Errorf("chain params = %s/%s", q.Get("srcChainId"), q.Get("dstChainId"))
		}
		if q.Get("srcAmount") != "1000000" {
			t.Errorf("srcAmount = %s, want 1000000", q.Get("srcAmount"))
		}
		if q.Get("sender") == "" || q.Get("recipient") == "" {
			t.Error("sender and recipient must always be sent")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"route": {
				"srcAmount": "1000000",
				"dstAmount": "995000",
				"dstAmountMin": "990000",
				"estimatedTimeMs": 30000,
				"fees": [{"name": "protocol", "amount": "500", "token": "0xaaa"}]
			}
		}`))
	})

	quote, err := client.GetQuote(context.Background(), clientTestRoute, big.NewInt(1_000_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.SrcAmount.String() != "1000000" {
		t.Fatalf("srcAmount = %s", quote.SrcAmount)
	}
	if quote.DstAmount.String() != "995000" {
		t.Fatalf("dstAmount = %s", quote.DstAmount)
	}
	if quote.DstAmountMin.String() != "990000" {
		t.Fatalf("dstAmountMin = %s", quote.DstAmountMin)
	}
	if quote.Duration != 30*time.Second {
		t.Fatalf("duration = %s, want 30s", quote.Duration)
	}
	if len(quote.Fees) != 1 || quote.Fees[0].Amount.String() != "500" {
		t.Fatalf("fees = %+v", quote.Fees)
	}
}

func TestGetQuoteStatusClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantCode      apperror.Code
		wantTransient bool
	}{
		{
			name:          "rate_limited",
			status:        http.StatusTooManyRequests,
			body:          `{}`,
			wantCode:      apperror.CodeRateLimited,
			wantTransient: true,
		},
		{
			name:          "server_error",
			status:        http.StatusInternalServerError,
			body:          `{}`,
			wantCode:      apperror.CodeServerError,
			wantTransient: true,
		},
		{
			name:     "not_found_with_no_route_body",
			status:   http.StatusNotFound,
			body:     `{"error": {"code": "NO_ROUTE", "message": "no routes found for pair"}}`,
			wantCode: apperror.CodeNoQuote,
		},
		{
			name:     "bad_request_amount_too_large",
			status:   http.StatusBadRequest,
			body:     `{"error": {"code": "VALIDATION", "message": "amount too large for route"}}`,
			wantCode: apperror.CodeNoQuote,
		},
		{
			name:     "not_found_code_only_signal",
			status:   http.StatusNotFound,
			body:     `{"error": {"code": "NO_ROUTE", "message": "unable to serve request"}}`,
			wantCode: apperror.CodeNoQuote,
		},
		{
			name:     "bad_request_generic",
			status:   http.StatusBadRequest,
			body:     `{"error": {"code": "VALIDATION", "message": "bad srcToken"}}`,
			wantCode: apperror.CodeClientError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetQuote(context.Background(), clientTestRoute, big.NewInt(1_000_000))
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := apperror.GetCode(err); got != tt.wantCode {
				t.Fatalf("code = %s, want %s", got, tt.wantCode)
			}
			if got := apperror.IsTransient(err); got != tt.wantTransient {
				t.Fatalf("IsTransient = %v, want %v", got, tt.wantTransient)
			}
		})
	}
}

func TestGetQuoteNoRouteInsideOK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": {"code": "NO_ROUTE", "message": "insufficient liquidity"}}`))
	})

	_, err := client.GetQuote(context.Background(), clientTestRoute, big.NewInt(1_000_000))
	if !apperror.IsNoQuote(err) {
		t.Fatalf("error = %v, want no-quote for a 200 error payload", err)
	}
}

func TestGetQuoteEmptyBodyIsNoQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	_, err := client.GetQuote(context.Background(), clientTestRoute, big.NewInt(1_000_000))
	if !apperror.IsNoQuote(err) {
		t.Fatalf("error = %v, want no-quote when the response carries no route", err)
	}
}

func TestGetQuoteMalformedAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"route": {"srcAmount": "1000000", "dstAmount": "not-a-number"}}`))
	})

	_, err := client.GetQuote(context.Background(), clientTestRoute, big.NewInt(1_000_000))
	if !apperror.IsMalformed(err) {
		t.Fatalf("error = %v, want malformed-response", err)
	}
	if apperror.IsTransient(err) {
		t.Fatal("schema mismatches must never look transient")
	}
}

func TestGetQuoteMalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"route": {`))
	})

	_, err := client.GetQuote(context.Background(), clientTestRoute, big.NewInt(1_000_000))
	if !apperror.IsMalformed(err) {
		t.Fatalf("error = %v, want malformed-response for truncated JSON", err)
	}
}

func TestGetQuoteRejectsNonPositiveAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server must not be reached for invalid input")
	})

	for _, amount := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1)} {
		_, err := client.GetQuote(context.Background(), clientTestRoute, amount)
		if apperror.GetCode(err) != apperror.CodeInvalidInput {
			t.Fatalf("amount %v: code = %s, want INVALID_INPUT", amount, apperror.GetCode(err))
		}
	}
}

func TestIsNoQuoteMarkers(t *testing.T) {
	tests := []struct {
		payload *errorPayload
		want    bool
	}{
		{nil, false},
		{&errorPayload{Code: "NO_ROUTE", Message: "none"}, true},
		{&errorPayload{Code: "no-routes-found"}, true},
		{&errorPayload{Code: "INSUFFICIENT_LIQUIDITY"}, true},
		{&errorPayload{Message: "Insufficient Liquidity for this pair"}, true},
		{&errorPayload{Message: "route not supported"}, true},
		{&errorPayload{Code: "INTERNAL", Message: "boom"}, false},
		{&errorPayload{Code: "RATE_LIMITED", Message: "slow down"}, false},
	}
	for _, tt := range tests {
		if got := tt.payload.isNoQuote(); got != tt.want {
			t.Errorf("isNoQuote(%+v) = %v, want %v", tt.payload, got, tt.want)
		}
	}
}
