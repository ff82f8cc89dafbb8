// Package asset holds token descriptors and a registry used to resolve
// configured routes into probeable assets.
package asset

import (
	"fmt"
	"strings"
)

// Token describes one asset on one chain. Identity is the (chain,
// address) pair; the symbol is display metadata only.
type Token struct {
	ChainID  string
	Address  string
	Symbol   string
	Decimals uint8
}

// NewToken normalizes and validates a token descriptor: identifiers are
// trimmed, addresses lowercased, symbols uppercased.
func NewToken(chainID, address, symbol string, decimals uint8) (Token, error) {
	chainID = strings.TrimSpace(chainID)
	address = strings.ToLower(strings.TrimSpace(address))
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if chainID == "" {
		return Token{}, fmt.Errorf("asset: empty chain id")
	}
	if address == "" {
		return Token{}, fmt.Errorf("asset: empty address")
	}
	if symbol == "" {
		return Token{}, fmt.Errorf("asset: empty symbol")
	}
	if decimals > 30 {
		return Token{}, fmt.Errorf("asset: suspicious decimals (%d) for %s", decimals, symbol)
	}

	return Token{
		ChainID:  chainID,
		Address:  address,
		Symbol:   symbol,
		Decimals: decimals,
	}, nil
}

// Key returns the registry key, "chainID:address".
func (t Token) Key() string {
	return t.ChainID + ":" + t.Address
}

// String returns a human-readable representation.
func (t Token) String() string {
	return fmt.Sprintf("%s@%s", t.Symbol, t.ChainID)
}
