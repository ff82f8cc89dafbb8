package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// rateDivisionPrecision is the number of fractional digits kept when
// dividing normalized amounts. 30 covers 18-decimal tokens with room to
// spare for sub-bps slippage resolution.
const rateDivisionPrecision = 30

// EffectiveRate is the decimal-normalized output/input ratio of a quote:
// (dstAmount / 10^dstDecimals) / (srcAmount / 10^srcDecimals).
// A zero dstAmount yields rate 0; a zero srcAmount is an error.
func EffectiveRate(srcAmount, dstAmount *big.Int, srcDecimals, dstDecimals uint8) (decimal.Decimal, error) {
	if srcAmount == nil || dstAmount == nil {
		return decimal.Zero, fmt.Errorf("effective rate: nil amount")
	}
	if srcAmount.Sign() == 0 {
		return decimal.Zero, fmt.Errorf("effective rate: zero source amount")
	}
	if dstAmount.Sign() == 0 {
		return decimal.Zero, nil
	}

	src := decimal.NewFromBigInt(srcAmount, -int32(srcDecimals))
	dst := decimal.NewFromBigInt(dstAmount, -int32(dstDecimals))
	return dst.DivRound(src, rateDivisionPrecision), nil
}

// QuoteRate computes the effective rate of a quote on the given route.
func QuoteRate(route Route, q Quote) (decimal.Decimal, error) {
	return EffectiveRate(q.SrcAmount, q.DstAmount, route.Src.Decimals, route.Dst.Decimals)
}

// SlippageBps is the proportional drop of rate against baseRate in basis
// points, rounded half-up and clamped at zero: a probe quoted marginally
// better than baseline reads 0 bps, never negative.
func SlippageBps(rate, baseRate decimal.Decimal) (int64, error) {
	if baseRate.Sign() <= 0 {
		return 0, fmt.Errorf("slippage: non-positive base rate %s", baseRate)
	}

	bps := decimal.NewFromInt(1).
		Sub(rate.DivRound(baseRate, rateDivisionPrecision)).
		Mul(decimal.NewFromInt(10_000)).
		Round(0).
		IntPart()

	if bps < 0 {
		return 0, nil
	}
	return bps, nil
}
