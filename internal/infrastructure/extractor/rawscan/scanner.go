// Package rawscan is the last-resort strategy: it treats the upload as a
// single-byte text buffer and pulls out whatever looks like prose.
package rawscan

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
	"github.com/kirillkom/exam-prep-extractor/internal/core/readability"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/extractor/pdftext"
)

const (
	DefaultMinRatio = 0.6

	minRunLength   = 20
	maxInflated    = 32 << 20
	minWordLetters = 2
)

var printableRun = regexp.MustCompile(`[\x20-\x7E\t\r\n]{20,}`)

// Structural keywords and operators that show up in printable runs of PDF and
// other binary containers.
var structuralTokens = map[string]bool{
	"obj": true, "endobj": true, "stream": true, "endstream": true,
	"xref": true, "trailer": true, "startxref": true, "%%EOF": true,
	"BT": true, "ET": true, "Tf": true, "Td": true, "TD": true, "Tm": true, "Tj": true, "TJ": true,
	"T*": true, "Tc": true, "Tw": true, "Tz": true, "TL": true, "Tr": true, "Ts": true,
	"cm": true, "re": true, "rg": true, "RG": true, "gs": true, "Do": true,
	"q": true, "Q": true, "m": true, "l": true, "c": true, "v": true, "y": true, "h": true,
	"f": true, "F": true, "S": true, "s": true, "B": true, "b": true, "n": true, "W": true,
	"w": true, "J": true, "j": true, "M": true, "d": true, "ri": true, "i": true,
	"k": true, "K": true, "g": true, "G": true, "cs": true, "CS": true, "sc": true, "SC": true,
	"scn": true, "SCN": true, "sh": true, "BI": true, "ID": true, "EI": true,
	"BDC": true, "BMC": true, "EMC": true, "R": true,
}

type Scanner struct {
	minRatio float64
}

func NewScanner(minRatio float64) *Scanner {
	if minRatio <= 0 || minRatio > 1 {
		minRatio = DefaultMinRatio
	}
	return &Scanner{minRatio: minRatio}
}

func (s *Scanner) Method() domain.ExtractionMethod {
	return domain.MethodRawByteScan
}

// Attempt never fails: it returns "" when nothing readable enough was found.
func (s *Scanner) Attempt(ctx context.Context, doc domain.RawDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	buffers := append([][]byte{doc.Data}, pdftext.InflateStreams(doc.Data, maxInflated)...)

	var shown []string
	for _, buf := range buffers {
		if text := pdftext.ShowText(buf); text != "" {
			shown = append(shown, text)
		}
	}
	if text := strings.Join(shown, "\n"); s.readable(text) {
		return text, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	var runs []string
	for _, buf := range buffers {
		runs = append(runs, printableRuns(buf)...)
	}
	if text := strings.Join(runs, "\n"); s.readable(text) {
		return text, nil
	}
	return "", nil
}

func (s *Scanner) readable(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return readability.Score(readability.Normalize(text)).Ratio >= s.minRatio
}

// printableRuns decodes buf as ISO-8859-1 and returns long printable ASCII
// runs with structural tokens filtered out.
func printableRuns(buf []byte) []string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(buf)
	if err != nil {
		return nil
	}

	var out []string
	for _, run := range printableRun.FindAllString(string(decoded), -1) {
		for _, line := range strings.FieldsFunc(run, func(r rune) bool { return r == '\n' || r == '\r' }) {
			if cleaned := filterLine(line); len(cleaned) >= minRunLength {
				out = append(out, cleaned)
			}
		}
	}
	return out
}

func filterLine(line string) string {
	words := strings.Fields(line)
	kept := words[:0]
	for _, word := range words {
		if keepWord(word) {
			kept = append(kept, word)
		}
	}
	if len(kept) < 3 {
		return ""
	}
	return strings.Join(kept, " ")
}

func keepWord(word string) bool {
	if structuralTokens[word] {
		return false
	}
	switch word[0] {
	case '/', '<', '>', '[', ']', '%', '{', '}':
		return false
	}
	letters := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= minWordLetters || word == "a" || word == "A" || word == "I"
}
