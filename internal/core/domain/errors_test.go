package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExhaustedErrorListsAttempts(t *testing.T) {
	err := &ExhaustedError{Attempts: []MethodAttempt{
		{Method: MethodDirectParse, Err: errors.New("malformed xref")},
		{Method: MethodOpticalRecognition},
		{Method: MethodRawByteScan, Length: 12, Ratio: 0.1},
	}}

	msg := err.Error()
	for _, want := range []string{"direct_parse (malformed xref)", "optical_recognition (no text recovered)", "raw_byte_scan (text unreadable"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}

	methods := err.Methods()
	if len(methods) != 3 || methods[0] != MethodDirectParse || methods[2] != MethodRawByteScan {
		t.Fatalf("unexpected methods %v", methods)
	}
}

func TestExhaustedErrorMatchesKind(t *testing.T) {
	wrapped := fmt.Errorf("process: %w", &ExhaustedError{})
	if !IsKind(wrapped, ErrAllMethodsExhausted) {
		t.Fatalf("expected exhausted kind")
	}
	var exhausted *ExhaustedError
	if !errors.As(wrapped, &exhausted) {
		t.Fatalf("expected errors.As to find ExhaustedError")
	}
	if !strings.Contains(exhausted.Error(), "no extraction methods were attempted") {
		t.Fatalf("unexpected empty message %q", exhausted.Error())
	}
}

func TestWrapErrorKeepsKindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(ErrTemporary, "save", cause)
	if !IsKind(err, ErrTemporary) || !errors.Is(err, cause) {
		t.Fatalf("expected kind and cause to be preserved: %v", err)
	}
	if WrapError(ErrTemporary, "save", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
}

func TestArbitrationPolicyValidate(t *testing.T) {
	if err := DefaultArbitrationPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}

	bad := DefaultArbitrationPolicy()
	bad.DegradedRatio = 0.9
	if err := bad.Validate(); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	bad = DefaultArbitrationPolicy()
	bad.RetainLength = -1
	if err := bad.Validate(); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestClampConfidence(t *testing.T) {
	cases := map[float64]float64{0: MinConfidence, 0.5: 0.5, 1.2: MaxConfidence}
	for in, want := range cases {
		if got := ClampConfidence(in); got != want {
			t.Fatalf("ClampConfidence(%v) = %v, want %v", in, got, want)
		}
	}
}
