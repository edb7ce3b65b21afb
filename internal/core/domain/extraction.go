package domain

import "fmt"

// ExtractionMethod tags which technique produced a piece of text.
type ExtractionMethod string

const (
	MethodDirectParse        ExtractionMethod = "direct_parse"
	MethodAlternateParse     ExtractionMethod = "alternate_parse"
	MethodOpticalRecognition ExtractionMethod = "optical_recognition"
	MethodRawByteScan        ExtractionMethod = "raw_byte_scan"
)

var methodPriority = map[ExtractionMethod]int{
	MethodDirectParse:        0,
	MethodAlternateParse:     1,
	MethodOpticalRecognition: 2,
	MethodRawByteScan:        3,
}

// Priority is the fixed position of the method in the fallback chain.
func (m ExtractionMethod) Priority() int {
	if p, ok := methodPriority[m]; ok {
		return p
	}
	return len(methodPriority)
}

func (m ExtractionMethod) Valid() bool {
	_, ok := methodPriority[m]
	return ok
}

type ReadabilityScore struct {
	Ratio     float64 `json:"ratio"`
	IsGarbled bool    `json:"is_garbled"`
}

// ExtractionCandidate is normalized text produced by one method.
type ExtractionCandidate struct {
	Text   string           `json:"text"`
	Method ExtractionMethod `json:"method"`
	Length int              `json:"length"`
	Score  ReadabilityScore `json:"score"`
}

// ExtractionResult is the accepted candidate. Degraded marks a best-effort pick
// that did not meet the acceptance threshold.
type ExtractionResult struct {
	Text     string           `json:"text"`
	Method   ExtractionMethod `json:"method"`
	Score    ReadabilityScore `json:"score"`
	Degraded bool             `json:"degraded"`
	Attempts []MethodAttempt  `json:"attempts,omitempty"`
}

// ArbitrationPolicy holds the thresholds the orchestrator applies to candidates.
type ArbitrationPolicy struct {
	EarlyExitLength int
	RetainLength    int
	AcceptRatio     float64
	AcceptLength    int
	DegradedRatio   float64
	DegradedLength  int
}

func DefaultArbitrationPolicy() ArbitrationPolicy {
	return ArbitrationPolicy{
		EarlyExitLength: 100,
		RetainLength:    50,
		AcceptRatio:     0.6,
		AcceptLength:    50,
		DegradedRatio:   0.3,
		DegradedLength:  30,
	}
}

func (p ArbitrationPolicy) Validate() error {
	if p.AcceptRatio < 0 || p.AcceptRatio > 1 || p.DegradedRatio < 0 || p.DegradedRatio > 1 {
		return fmt.Errorf("%w: ratios must be within [0,1]", ErrInvalidInput)
	}
	if p.DegradedRatio > p.AcceptRatio {
		return fmt.Errorf("%w: degraded ratio %.2f exceeds accept ratio %.2f", ErrInvalidInput, p.DegradedRatio, p.AcceptRatio)
	}
	if p.EarlyExitLength < 0 || p.RetainLength < 0 || p.AcceptLength < 0 || p.DegradedLength < 0 {
		return fmt.Errorf("%w: length thresholds must be non-negative", ErrInvalidInput)
	}
	return nil
}
