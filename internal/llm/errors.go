package llm

import (
	"fmt"
	"strings"
)

// Attempt records one failed provider call inside a dispatch.
type Attempt struct {
	Provider string
	Err      error
}

// ProviderError means every configured provider failed for a dispatch.
// It carries the full chain of underlying failures.
type ProviderError struct {
	Attempts []Attempt
}

func (e *ProviderError) Error() string {
	if len(e.Attempts) == 0 {
		return "llm dispatch failed: no providers configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return "all llm providers failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the underlying provider errors for errors.Is/As.
func (e *ProviderError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}
