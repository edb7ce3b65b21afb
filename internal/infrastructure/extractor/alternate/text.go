package alternate

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// decodeText guesses the encoding the direct parser refused: UTF-16 when a
// byte order mark says so, UTF-8 when valid, Windows-1252 otherwise.
func decodeText(raw []byte) (string, error) {
	var dec *encoding.Decoder
	switch {
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		dec = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case utf8.Valid(raw):
		return string(bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})), nil
	default:
		dec = charmap.Windows1252.NewDecoder()
	}

	out, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}
