package alternate

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

// Parts scanned in order. Footnotes and endnotes often carry answer keys.
var wordParts = []string{"word/document.xml", "word/footnotes.xml", "word/endnotes.xml"}

var (
	runText      = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>|<w:(tab|br|cr)\b[^>]*/>|</w:p>`)
	maxPartBytes = int64(64 << 20)
)

// parseDOCX scans the raw WordprocessingML with a regular expression instead
// of an XML decoder, which tolerates documents whose XML is not well formed.
func parseDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	var out strings.Builder
	found := false
	for _, name := range wordParts {
		f, ok := parts[name]
		if !ok {
			continue
		}
		found = true
		xmlText, err := readPart(f)
		if err != nil {
			continue
		}
		scanRuns(&out, xmlText)
		out.WriteByte('\n')
	}
	if !found {
		return "", errors.New("no word parts in archive")
	}
	return out.String(), nil
}

func readPart(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartBytes))
	if err != nil && len(data) == 0 {
		return "", err
	}
	return string(data), nil
}

func scanRuns(out *strings.Builder, xmlText string) {
	for _, m := range runText.FindAllStringSubmatch(xmlText, -1) {
		switch {
		case m[0] == "</w:p>":
			out.WriteByte('\n')
		case m[2] == "tab":
			out.WriteByte('\t')
		case m[2] == "br" || m[2] == "cr":
			out.WriteByte('\n')
		default:
			out.WriteString(html.UnescapeString(m[1]))
		}
	}
}
