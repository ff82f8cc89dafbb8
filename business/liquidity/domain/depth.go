package domain

import (
	"math/big"
	"time"
)

// Sample records one probe of a depth search, in call order, for
// diagnostics. Amounts are in the smallest unit of the source asset.
type Sample struct {
	SrcAmount   *big.Int
	DstAmount   *big.Int
	SlippageBps int64
}

// Threshold is the outcome of one depth search: the largest input
// amount whose measured slippage stayed at or below the target.
type Threshold struct {
	TargetBps   int64
	MaxAmountIn *big.Int // smallest unit of the source asset
	AchievedBps int64
	Samples     []Sample
}

// RouteDepth aggregates every threshold search for one route, with the
// measurement timestamp handed to the surrounding aggregation layer.
type RouteDepth struct {
	Route      Route
	Thresholds []Threshold
	MeasuredAt time.Time
}
