package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTemporary           = errors.New("temporary failure")
	ErrUnsupportedFormat   = errors.New("unsupported format")
	ErrParseFailure        = errors.New("parse failure")
	ErrOCRFailure          = errors.New("ocr failure")
	ErrAllMethodsExhausted = errors.New("all extraction methods exhausted")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// MethodAttempt records the outcome of a single strategy run.
type MethodAttempt struct {
	Method ExtractionMethod `json:"method"`
	Length int              `json:"length"`
	Ratio  float64          `json:"ratio"`
	Err    error            `json:"-"`
}

// Reason is a short human-readable explanation of why the attempt did not win.
func (a MethodAttempt) Reason() string {
	switch {
	case a.Err != nil:
		return a.Err.Error()
	case a.Length == 0:
		return "no text recovered"
	default:
		return fmt.Sprintf("text unreadable (%d chars, readability %.2f)", a.Length, a.Ratio)
	}
}

// ExhaustedError is returned when no strategy produced acceptable text.
type ExhaustedError struct {
	Attempts []MethodAttempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "document could not be read: no extraction methods were attempted"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s (%s)", attempt.Method, attempt.Reason()))
	}
	return "document could not be read: tried " + strings.Join(parts, ", ")
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrAllMethodsExhausted
}

// Methods lists attempted techniques in the order they ran.
func (e *ExhaustedError) Methods() []ExtractionMethod {
	out := make([]ExtractionMethod, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		out = append(out, attempt.Method)
	}
	return out
}
