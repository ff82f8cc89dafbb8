package asset

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe registry of known tokens.
type Registry struct {
	byKey    map[string]Token
	bySymbol map[string][]Token // symbol -> tokens (may exist on several chains)
	mu       sync.RWMutex
}

// NewRegistry creates a new empty token registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:    make(map[string]Token),
		bySymbol: make(map[string][]Token),
	}
}

// Register adds a token. Re-registering the same key is an error.
func (r *Registry) Register(t Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := t.Key()
	if _, exists := r.byKey[key]; exists {
		return fmt.Errorf("asset: %s already registered", key)
	}

	r.byKey[key] = t
	r.bySymbol[t.Symbol] = append(r.bySymbol[t.Symbol], t)
	return nil
}

// Get retrieves a token by its "chainID:address" key.
func (r *Registry) Get(key string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byKey[key]
	return t, ok
}

// BySymbol returns every registered token carrying the given symbol.
func (r *Registry) BySymbol(symbol string) []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := r.bySymbol[symbol]
	out := make([]Token, len(tokens))
	copy(out, tokens)
	return out
}

// Len returns the number of registered tokens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byKey)
}
