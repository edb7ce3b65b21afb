package alternate

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

func zipParts(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestAttemptDOCXToleratesBrokenXML(t *testing.T) {
	// Unclosed body element and stray ampersand: an XML decoder would reject it.
	body := `<w:document><w:body><w:p><w:r><w:t>Q1: State Ohm&apos;s law.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Current is proportional </w:t><w:t>to voltage & inversely to resistance.</w:t></w:r></w:p>`
	data := zipParts(t, map[string]string{
		"word/document.xml":  body,
		"word/footnotes.xml": `<w:footnotes><w:p><w:r><w:t>Answer key</w:t><w:tab/><w:t>page 4</w:t></w:r></w:p></w:footnotes>`,
	})

	text, err := NewParser(nil).Attempt(context.Background(), domain.RawDocument{Filename: "physics.docx", Data: data})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	for _, want := range []string{"Q1: State Ohm's law.\n", "Current is proportional to voltage & inversely", "Answer key\tpage 4"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
}

func TestAttemptDOCXWithoutWordParts(t *testing.T) {
	data := zipParts(t, map[string]string{"docProps/app.xml": "<Properties/>"})
	_, err := NewParser(nil).Attempt(context.Background(), domain.RawDocument{Filename: "x.docx", Data: data})
	if !errors.Is(err, domain.ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", err)
	}
}

func TestAttemptTextEncodings(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{name: "utf16le", data: []byte{0xFF, 0xFE, 'H', 0, 'i', 0}, want: "Hi"},
		{name: "utf16be", data: []byte{0xFE, 0xFF, 0, 'H', 0, 'i'}, want: "Hi"},
		{name: "windows1252", data: []byte("caf\xe9 \x93quoted\x94"), want: "café “quoted”"},
		{name: "utf8", data: []byte("plain"), want: "plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewParser(nil).Attempt(context.Background(), domain.RawDocument{Filename: "notes.txt", Data: tc.data})
			if err != nil {
				t.Fatalf("Attempt() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAttemptMalformedPDF(t *testing.T) {
	_, err := NewParser(nil).Attempt(context.Background(), domain.RawDocument{
		Filename: "broken.pdf",
		Data:     []byte("%PDF-1.7\n1 0 obj garbage\n%%EOF"),
	})
	if !errors.Is(err, domain.ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", err)
	}
}

func TestAttemptUnsupportedFormat(t *testing.T) {
	_, err := NewParser(nil).Attempt(context.Background(), domain.RawDocument{Filename: "sheet.xlsx", Data: []byte("PK")})
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
