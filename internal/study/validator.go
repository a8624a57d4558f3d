package study

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxHashtagLength bounds accepted hashtag responses.
const DefaultMaxHashtagLength = 64

type ValidationKind string

const (
	ValidationEmpty             ValidationKind = "empty"
	ValidationInvalidCharacters ValidationKind = "invalid_characters"
	ValidationTooLong           ValidationKind = "too_long"
)

// ValidationError reports why a response was rejected. Input carries the
// raw offending input so callers can echo it back to the participant.
type ValidationError struct {
	Kind  ValidationKind
	Input string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid hashtag %q: %s", e.Input, e.Kind)
}

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Validator checks hashtag responses. The zero value uses
// DefaultMaxHashtagLength.
type Validator struct {
	MaxLength int
}

// Validate trims surrounding whitespace, strips one leading '#', and
// accepts only non-empty ASCII letters/digits up to MaxLength. The cleaned
// hashtag is returned without the '#'. No side effects.
func (v Validator) Validate(raw string) (string, error) {
	maxLen := v.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxHashtagLength
	}
	t := strings.TrimSpace(raw)
	t = strings.TrimPrefix(t, "#")
	if t == "" {
		return "", &ValidationError{Kind: ValidationEmpty, Input: raw}
	}
	for i := 0; i < len(t); i++ {
		c := t[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", &ValidationError{Kind: ValidationInvalidCharacters, Input: raw}
		}
	}
	if len(t) > maxLen {
		return "", &ValidationError{Kind: ValidationTooLong, Input: raw}
	}
	return t, nil
}
