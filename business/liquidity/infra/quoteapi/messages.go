package quoteapi

import (
	"strings"
	"time"

	"github.com/himanshuranjan007/data-provider-playground-lz0/business/liquidity/domain"
	"github.com/himanshuranjan007/data-provider-playground-lz0/internal/apperror"
)

// quoteResponse is the wire shape of a successful quote.
type quoteResponse struct {
	Route *routePayload `json:"route"`
	Error *errorPayload `json:"error"`
}

type routePayload struct {
	SrcAmount       string       `json:"srcAmount"`
	DstAmount       string       `json:"dstAmount"`
	DstAmountMin    string       `json:"dstAmountMin"`
	EstimatedTimeMs int64        `json:"estimatedTimeMs"`
	Fees            []feePayload `json:"fees"`
}

type feePayload struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Token  string `json:"token"`
}

// errorPayload is the wire shape of a remote-reported failure, which
// can arrive on error statuses and, for some deployments, inside a 200.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// noQuoteMarkers are remote error fragments meaning "no viable quote
// for this size": amount exceeds available liquidity, or the route is
// not supported at all.
var noQuoteMarkers = []string{
	"no route",
	"no routes",
	"insufficient liquidity",
	"amount too large",
	"route not supported",
	"unsupported route",
}

func (e *errorPayload) isNoQuote() bool {
	if e == nil {
		return false
	}
	// Remote codes separate words with underscores or hyphens (NO_ROUTE,
	// no-route); fold them to spaces so the markers match either form.
	probe := strings.NewReplacer("_", " ", "-", " ").
		Replace(strings.ToLower(e.Code + " " + e.Message))
	for _, marker := range noQuoteMarkers {
		if strings.Contains(probe, marker) {
			return true
		}
	}
	return false
}

// toQuote converts the wire payload into a domain Quote. Amounts must
// be exact base-10 integers; anything else is a schema mismatch.
func (r *routePayload) toQuote() (domain.Quote, error) {
	src, err := domain.ParseAmount(r.SrcAmount)
	if err != nil {
		return domain.Quote{}, apperror.New(apperror.CodeMalformedResponse,
			apperror.WithContext("srcAmount"), apperror.WithCause(err))
	}
	dst, err := domain.ParseAmount(r.DstAmount)
	if err != nil {
		return domain.Quote{}, apperror.New(apperror.CodeMalformedResponse,
			apperror.WithContext("dstAmount"), apperror.WithCause(err))
	}

	quote := domain.Quote{
		SrcAmount: src,
		DstAmount: dst,
		Duration:  time.Duration(r.EstimatedTimeMs) * time.Millisecond,
	}

	// dstAmountMin is optional on some deployments.
	if r.DstAmountMin != "" {
		min, err := domain.ParseAmount(r.DstAmountMin)
		if err != nil {
			return domain.Quote{}, apperror.New(apperror.CodeMalformedResponse,
				apperror.WithContext("dstAmountMin"), apperror.WithCause(err))
		}
		quote.DstAmountMin = min
	}

	for _, f := range r.Fees {
		amount, err := domain.ParseAmount(f.Amount)
		if err != nil {
			return domain.Quote{}, apperror.New(apperror.CodeMalformedResponse,
				apperror.WithContext("fee "+f.Name), apperror.WithCause(err))
		}
		quote.Fees = append(quote.Fees, domain.Fee{
			Name:   f.Name,
			Amount: amount,
			Token:  f.Token,
		})
	}

	return quote, nil
}
