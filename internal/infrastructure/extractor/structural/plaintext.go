package structural

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parsePlainText accepts UTF-8 only; other encodings are left to the alternate parser.
func parsePlainText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return "", errors.New("text is not valid UTF-8")
	}
	return strings.TrimSpace(string(raw)), nil
}
