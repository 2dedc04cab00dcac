package router

import (
	"errors"
	"fmt"
	"strings"
)

// ErrChainExhausted is returned when every entry of a fallback chain failed.
// It is the only routing failure surfaced to callers.
var ErrChainExhausted = errors.New("fallback chain exhausted")

// ExhaustedError carries the attempts made before giving up.
type ExhaustedError struct {
	Chain    string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s=%d", a.Identity, a.Status))
	}
	return fmt.Sprintf("%s: %s [%s]", ErrChainExhausted, e.Chain, strings.Join(parts, ", "))
}

func (e *ExhaustedError) Unwrap() error {
	return ErrChainExhausted
}
