package domain

import (
	"fmt"
	"math/big"
	"time"
)

// Fee is one named fee entry of a quote. Amount is in the smallest unit
// of the fee token.
type Fee struct {
	Name   string
	Amount *big.Int
	Token  string // optional
}

// Quote is the result of probing a route at one input amount. Amounts
// are integers in the smallest unit, arbitrary precision: they must
// round-trip exactly regardless of decimal width, so floats are never
// involved.
type Quote struct {
	SrcAmount    *big.Int
	DstAmount    *big.Int
	DstAmountMin *big.Int
	Duration     time.Duration // estimated settlement time, optional
	Fees         []Fee
}

// ParseAmount parses a non-negative integer string in the smallest unit.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("amount %q is not a base-10 integer", s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is negative", s)
	}
	return n, nil
}
