package readability

import (
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

const (
	MinReadableLength = 10
	GarbledRatio      = 0.5
	MaxNoiseDensity   = 0.10
)

// Score measures the share of characters drawn from the readable set
// [A-Za-z0-9 \t\n.,!?;:'"()-]. Text is garbled when it is shorter than
// MinReadableLength, its ratio is below GarbledRatio, or replacement and
// control characters exceed MaxNoiseDensity of its length.
func Score(text string) domain.ReadabilityScore {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return domain.ReadabilityScore{Ratio: 0, IsGarbled: true}
	}

	readable, noise := 0, 0
	for _, r := range text {
		if isReadable(r) {
			readable++
			continue
		}
		if r == utf8.RuneError || (unicode.IsControl(r) && r != '\r') {
			noise++
		}
	}

	ratio := float64(readable) / float64(total)
	garbled := total < MinReadableLength ||
		ratio < GarbledRatio ||
		float64(noise)/float64(total) > MaxNoiseDensity
	return domain.ReadabilityScore{Ratio: ratio, IsGarbled: garbled}
}

// Length is the character (rune) length used by every threshold.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

func isReadable(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case ' ', '\t', '\n', '.', ',', '!', '?', ';', ':', '\'', '"', '(', ')', '-':
		return true
	}
	return false
}
