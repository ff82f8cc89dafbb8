// Package domain contains the value objects of the liquidity context:
// routes, quotes, effective rates and depth measurements.
package domain

import "fmt"

// Asset identifies one token on one chain, with the decimal precision
// needed to normalize raw amounts.
type Asset struct {
	ChainID  string
	AssetID  string
	Symbol   string
	Decimals uint8
}

// String returns a human-readable representation.
func (a Asset) String() string {
	return fmt.Sprintf("%s@%s", a.Symbol, a.ChainID)
}

// Route is a directed (source, destination) asset pair. Routes are
// immutable value objects; equality is structural.
type Route struct {
	Src Asset
	Dst Asset
}

// String returns a human-readable representation, e.g. "USDC@eth -> USDC@arb".
func (r Route) String() string {
	return fmt.Sprintf("%s -> %s", r.Src, r.Dst)
}
