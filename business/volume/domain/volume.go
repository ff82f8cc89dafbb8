// Package domain contains the value objects of the volume context.
package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is one historical token transfer event's value, in the
// smallest unit of the token.
type Transfer struct {
	Block uint64
	Value *big.Int
}

// Window is the block range a volume figure covers, inclusive.
type Window struct {
	FromBlock uint64 `json:"fromBlock"`
	ToBlock   uint64 `json:"toBlock"`
}

// Report is the aggregated transfer volume over a window.
type Report struct {
	TokenSymbol string          `json:"tokenSymbol"`
	Window      Window          `json:"window"`
	TotalRaw    *big.Int        `json:"totalRaw"` // smallest unit
	Total       decimal.Decimal `json:"total"`    // decimal-normalized
	Transfers   int             `json:"transfers"`
	MeasuredAt  time.Time       `json:"measuredAt"`
}
