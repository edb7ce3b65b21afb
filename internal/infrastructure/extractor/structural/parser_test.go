package structural

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

func buildPDF(lines ...string) []byte {
	var content strings.Builder
	content.WriteString("BT /F1 12 Tf 72 720 Td ")
	for i, line := range lines {
		if i > 0 {
			content.WriteString("0 -16 Td ")
		}
		fmt.Fprintf(&content, "(%s) Tj ", line)
	}
	content.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const sampleWordML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>1. What is inertia?</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Inertia is the </w:t></w:r><w:r><w:t>resistance of a body to changes in motion.</w:t></w:r></w:p>
<w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t><w:br/><w:t>Next</w:t></w:r></w:p>
</w:body></w:document>`

func TestAttemptPDF(t *testing.T) {
	p := NewParser(nil)
	text, err := p.Attempt(context.Background(), domain.RawDocument{
		Filename: "physics.pdf",
		Data:     buildPDF("What is inertia?", "Inertia resists changes in motion."),
	})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if !strings.Contains(text, "inertia") || !strings.Contains(text, "resists") {
		t.Fatalf("unexpected pdf text %q", text)
	}
}

func TestAttemptMalformedPDF(t *testing.T) {
	p := NewParser(nil)
	_, err := p.Attempt(context.Background(), domain.RawDocument{
		Filename: "broken.pdf",
		Data:     []byte("%PDF-1.4\nthis is not a real pdf body\n%%EOF"),
	})
	if !errors.Is(err, domain.ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", err)
	}
}

func TestAttemptDOCX(t *testing.T) {
	p := NewParser(nil)
	text, err := p.Attempt(context.Background(), domain.RawDocument{
		Filename: "notes.docx",
		Data:     buildDOCX(t, sampleWordML),
	})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if !strings.Contains(text, "1. What is inertia?\n") {
		t.Fatalf("expected question paragraph, got %q", text)
	}
	if !strings.Contains(text, "Inertia is the resistance of a body") {
		t.Fatalf("expected runs to be joined, got %q", text)
	}
	if !strings.Contains(text, "Name\tValue\nNext") {
		t.Fatalf("expected tab and break handling, got %q", text)
	}
}

func TestAttemptDOCXWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("word/styles.xml"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = zw.Close()

	_, err := NewParser(nil).Attempt(context.Background(), domain.RawDocument{Filename: "x.docx", Data: buf.Bytes()})
	if !errors.Is(err, domain.ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", err)
	}
}

func TestAttemptXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", "What is a prime number?"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := f.SetCellValue(sheet, "B1", "A number greater than one with no divisors other than one and itself."); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	text, err := NewParser(nil).Attempt(context.Background(), domain.RawDocument{Filename: "bank.xlsx", Data: buf.Bytes()})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if !strings.Contains(text, "What is a prime number?\nA number greater than one") {
		t.Fatalf("unexpected xlsx text %q", text)
	}
}

func TestAttemptHTML(t *testing.T) {
	page := `<html><head><style>p{color:red}</style><script>var x = "hidden";</script></head>
<body><h1>Quiz</h1><p>What is <b>density</b>?</p><p>Mass per unit volume.</p></body></html>`

	text, err := NewParser(nil).Attempt(context.Background(), domain.RawDocument{Filename: "quiz.html", Data: []byte(page)})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if strings.Contains(text, "hidden") || strings.Contains(text, "color") {
		t.Fatalf("script/style leaked: %q", text)
	}
	if !strings.Contains(text, "What is density ?") && !strings.Contains(text, "What is density?") {
		t.Fatalf("unexpected html text %q", text)
	}
	if !strings.Contains(text, "Quiz\n") {
		t.Fatalf("expected block break after heading, got %q", text)
	}
}

func TestAttemptPlainText(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("  Q1: What is light?  ")...)
	text, err := NewParser(nil).Attempt(context.Background(), domain.RawDocument{Filename: "a.txt", Data: data})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if text != "Q1: What is light?" {
		t.Fatalf("unexpected text %q", text)
	}

	_, err = NewParser(nil).Attempt(context.Background(), domain.RawDocument{Filename: "a.txt", Data: []byte{0xff, 0xfe, 0x41}})
	if !errors.Is(err, domain.ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure for invalid UTF-8, got %v", err)
	}
}

func TestAttemptUnsupportedFormat(t *testing.T) {
	_, err := NewParser(nil).Attempt(context.Background(), domain.RawDocument{Filename: "legacy.doc", Data: []byte{0xD0, 0xCF, 0x11, 0xE0}})
	if !errors.Is(err, domain.ErrParseFailure) || !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported parse failure, got %v", err)
	}
}
