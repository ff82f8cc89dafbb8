// Package app contains the depth estimator and the port it consumes.
package app

import (
	"context"
	"math/big"

	"github.com/himanshuranjan007/data-provider-playground-lz0/business/liquidity/domain"
)

// QuoteSource is the narrow contract the estimator depends on: given a
// route and an input amount in the smallest source unit, return a quote
// or fail. Implementations must report the domain "no viable quote for
// this size" condition as apperror.CodeNoQuote so the search can tell
// it apart from hard transport failures.
type QuoteSource interface {
	GetQuote(ctx context.Context, route domain.Route, srcAmount *big.Int) (domain.Quote, error)
}
