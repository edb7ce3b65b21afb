// Package pdftext pulls text out of PDF content streams without a full PDF
// object model. It is shared by the alternate parser, which feeds it page
// streams, and the raw byte scanner, which feeds it whole files.
package pdftext

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// wordGapKerning is the TJ adjustment (thousandths of an em) beyond which a
// gap is rendered as a space.
const wordGapKerning = -250

// ShowText returns the strings painted by the text-show operators (Tj, TJ, '
// and ") in a content stream, with line breaks inferred from text positioning.
func ShowText(stream []byte) string {
	var (
		out      strings.Builder
		pending  strings.Builder
		numbers  []float64
		hasShown bool
	)

	newline := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}
	space := func() {
		if out.Len() > 0 {
			s := out.String()
			if !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
				out.WriteByte(' ')
			}
		}
	}

	for i := 0; i < len(stream); {
		c := stream[i]
		switch {
		case isWhite(c):
			i++
		case c == '%':
			for i < len(stream) && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}
		case c == '(':
			raw, next := readLiteral(stream, i)
			pending.WriteString(decodeText(DecodeLiteral(raw)))
			i = next
		case c == '<' && i+1 < len(stream) && stream[i+1] == '<':
			i += 2
		case c == '>' && i+1 < len(stream) && stream[i+1] == '>':
			i += 2
		case c == '<':
			end := bytes.IndexByte(stream[i+1:], '>')
			if end < 0 {
				i = len(stream)
				continue
			}
			pending.WriteString(decodeText(DecodeHex(stream[i+1 : i+1+end])))
			i += end + 2
		case c == '[' || c == ']' || c == '{' || c == '}' || c == ')' || c == '>':
			i++
		case c == '/':
			i++
			for i < len(stream) && isRegular(stream[i]) {
				i++
			}
		case isNumberStart(c):
			start := i
			i++
			for i < len(stream) && isRegular(stream[i]) {
				i++
			}
			if v, err := strconv.ParseFloat(string(stream[start:i]), 64); err == nil {
				numbers = append(numbers, v)
				if v < wordGapKerning && pending.Len() > 0 {
					pending.WriteByte(' ')
				}
			}
		default:
			start := i
			for i < len(stream) && isRegular(stream[i]) {
				i++
			}
			if i == start {
				i++
				continue
			}
			switch string(stream[start:i]) {
			case "Tj", "TJ":
				if pending.Len() > 0 {
					out.WriteString(pending.String())
					hasShown = true
				}
			case "'", "\"":
				newline()
				out.WriteString(pending.String())
				hasShown = true
			case "T*":
				newline()
			case "Td", "TD":
				if len(numbers) >= 2 && numbers[len(numbers)-1] != 0 {
					newline()
				} else {
					space()
				}
			case "Tm":
				newline()
			case "ET":
				if hasShown {
					newline()
				}
			case "BI":
				i = skipInlineImage(stream, i)
			}
			pending.Reset()
			numbers = numbers[:0]
		}
	}
	return strings.TrimSpace(out.String())
}

// DecodeLiteral resolves the escape sequences of a PDF literal string body.
func DecodeLiteral(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out = append(out, raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\r':
			// Line continuation.
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		case '\n':
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				out = append(out, byte(val))
				continue
			}
			out = append(out, raw[i])
		}
	}
	return out
}

// DecodeHex decodes a hex string body; an odd trailing digit is padded with 0.
func DecodeHex(raw []byte) []byte {
	out := make([]byte, 0, len(raw)/2+1)
	var hi byte
	half := false
	for _, c := range raw {
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if !half {
			hi, half = v, true
			continue
		}
		out = append(out, hi<<4|v)
		half = false
	}
	if half {
		out = append(out, hi<<4)
	}
	return out
}

// decodeText maps string bytes to UTF-8: UTF-16BE when the byte order mark is
// present, Latin-1 otherwise.
func decodeText(raw []byte) string {
	if bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) {
		decoded, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(raw)
		if err == nil {
			return string(decoded)
		}
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	return string(decoded)
}

func readLiteral(b []byte, start int) ([]byte, int) {
	depth := 0
	for i := start; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return b[start+1 : i], i + 1
			}
		}
	}
	return b[start+1:], len(b)
}

func skipInlineImage(b []byte, from int) int {
	idx := bytes.Index(b[from:], []byte("EI"))
	for idx >= 0 {
		end := from + idx + 2
		if (from+idx == 0 || isWhite(b[from+idx-1])) && (end == len(b) || isWhite(b[end])) {
			return end
		}
		from = end
		idx = bytes.Index(b[from:], []byte("EI"))
	}
	return len(b)
}

func isWhite(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isWhite(c) && !isDelimiter(c)
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
