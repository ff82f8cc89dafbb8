package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestFromStatusClassification(t *testing.T) {
	tests := []struct {
		status        int
		wantCode      Code
		wantTransient bool
	}{
		{429, CodeRateLimited, true},
		{500, CodeServerError, true},
		{502, CodeServerError, true},
		{503, CodeServerError, true},
		{400, CodeClientError, false},
		{404, CodeClientError, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "test")
			if got := GetCode(err); got != tt.wantCode {
				t.Fatalf("code = %s, want %s", got, tt.wantCode)
			}
			if got := IsTransient(err); got != tt.wantTransient {
				t.Fatalf("IsTransient = %v, want %v", got, tt.wantTransient)
			}
			if got := StatusCode(err); got != tt.status {
				t.Fatalf("status = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestTaxonomyPredicates(t *testing.T) {
	if !IsTransient(New(CodeServiceTimeout)) {
		t.Fatal("timeouts must be transient")
	}
	if IsTransient(New(CodeMalformedResponse)) {
		t.Fatal("schema mismatches must not be retried")
	}
	if IsTransient(New(CodeNoQuote)) {
		t.Fatal("domain no-quote must not be retried")
	}
	if !IsNoQuote(New(CodeNoQuote, WithContext("amount too large"))) {
		t.Fatal("IsNoQuote must match through options")
	}
	if !IsMalformed(New(CodeMalformedResponse)) {
		t.Fatal("IsMalformed must match")
	}
}

func TestWrapPreservesExistingAppError(t *testing.T) {
	original := New(CodeNoQuote)
	wrapped := Wrap(fmt.Errorf("outer: %w", original), CodeInternalError, "ctx")
	if GetCode(wrapped) != CodeNoQuote {
		t.Fatalf("code = %s, want the original NO_QUOTE", GetCode(wrapped))
	}
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := New(CodeServiceUnavailable, WithCause(cause))
	if !errors.Is(err, cause) {
		t.Fatal("cause must be reachable through errors.Is")
	}
}
