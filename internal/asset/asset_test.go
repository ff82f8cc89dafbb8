package asset

import (
	"strings"
	"testing"
)

func TestNewTokenNormalizes(t *testing.T) {
	tok, err := NewToken("  ethereum ", " 0xA0B86991c6218B36C1D19D4A2E9EB0CE3606EB48 ", " usdc ", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tok.ChainID != "ethereum" {
		t.Fatalf("chain = %q", tok.ChainID)
	}
	if tok.Address != strings.ToLower("0xA0B86991c6218B36C1D19D4A2E9EB0CE3606EB48") {
		t.Fatalf("address = %q, want lowercased", tok.Address)
	}
	if tok.Symbol != "USDC" {
		t.Fatalf("symbol = %q, want uppercased", tok.Symbol)
	}
	if want := "ethereum:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"; tok.Key() != want {
		t.Fatalf("key = %q, want %q", tok.Key(), want)
	}
}

func TestNewTokenValidation(t *testing.T) {
	tests := []struct {
		name     string
		chainID  string
		address  string
		symbol   string
		decimals uint8
	}{
		{"empty_chain", "", "0xaaa", "USDC", 6},
		{"empty_address", "ethereum", "   ", "USDC", 6},
		{"empty_symbol", "ethereum", "0xaaa", "", 6},
		{"absurd_decimals", "ethereum", "0xaaa", "USDC", 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewToken(tt.chainID, tt.address, tt.symbol, tt.decimals); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestRegistryDuplicateKey(t *testing.T) {
	r := NewRegistry()
	tok, err := NewToken("ethereum", "0xaaa", "USDC", 6)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	if err := r.Register(tok); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(tok); err == nil {
		t.Fatal("re-registering the same key must fail")
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}
}

func TestRegistryLookups(t *testing.T) {
	r := NewRegistry()
	onEth, _ := NewToken("ethereum", "0xaaa", "USDC", 6)
	onArb, _ := NewToken("arbitrum", "0xbbb", "USDC", 6)
	weth, _ := NewToken("ethereum", "0xccc", "WETH", 18)

	for _, tok := range []Token{onEth, onArb, weth} {
		if err := r.Register(tok); err != nil {
			t.Fatalf("register %s: %v", tok, err)
		}
	}

	got, ok := r.Get("ethereum:0xaaa")
	if !ok || got.Symbol != "USDC" {
		t.Fatalf("Get = %+v, %v", got, ok)
	}
	if _, ok := r.Get("ethereum:0xdead"); ok {
		t.Fatal("unknown key must miss")
	}

	usdc := r.BySymbol("USDC")
	if len(usdc) != 2 {
		t.Fatalf("BySymbol(USDC) = %d tokens, want 2", len(usdc))
	}
	if len(r.BySymbol("DOGE")) != 0 {
		t.Fatal("unknown symbol must return empty")
	}
}
