package rawscan

import (
	"bytes"
	"compress/zlib"
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
	"github.com/kirillkom/exam-prep-extractor/internal/core/readability"
)

func TestAttemptReadsTextShowStrings(t *testing.T) {
	data := []byte("%PDF-1.4\n4 0 obj << /Length 120 >>\nstream\n" +
		"BT /F1 12 Tf 72 720 Td (1. What is the speed of light?) Tj 0 -16 Td " +
		"(Light travels at about three hundred thousand kilometres per second.) Tj ET\n" +
		"endstream\nendobj\n%%EOF")

	got, err := NewScanner(0.6).Attempt(context.Background(), domain.RawDocument{Filename: "x.pdf", Data: data})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if !strings.Contains(got, "What is the speed of light?") || !strings.Contains(got, "kilometres per second") {
		t.Fatalf("unexpected text %q", got)
	}
	if strings.Contains(got, "endobj") {
		t.Fatalf("structural keyword leaked: %q", got)
	}
}

func TestAttemptReadsCompressedStreams(t *testing.T) {
	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	_, _ = w.Write([]byte("BT (Osmosis moves water across a membrane toward higher solute concentration.) Tj ET"))
	_ = w.Close()

	var data bytes.Buffer
	data.WriteString("%PDF-1.5\n5 0 obj << /Filter /FlateDecode >>\nstream\n")
	data.Write(compressed.Bytes())
	data.WriteString("\nendstream\nendobj\n%%EOF")

	got, err := NewScanner(0).Attempt(context.Background(), domain.RawDocument{Filename: "x.pdf", Data: data.Bytes()})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if !strings.Contains(got, "Osmosis moves water") {
		t.Fatalf("expected inflated text, got %q", got)
	}
}

func TestAttemptFallsBackToPrintableRuns(t *testing.T) {
	var data bytes.Buffer
	data.Write([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00, 0x00})
	data.WriteString("Explain the water cycle and its main stages in detail")
	data.Write([]byte{0x00, 0x01, 0x02, 0xFF, 0xFE})
	data.WriteString("Evaporation condensation and precipitation move water around")
	data.Write([]byte{0x00, 0x00, 0x9C})

	got, err := NewScanner(0.6).Attempt(context.Background(), domain.RawDocument{Filename: "legacy.doc", Data: data.Bytes()})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if !strings.Contains(got, "Explain the water cycle") || !strings.Contains(got, "precipitation move water") {
		t.Fatalf("unexpected runs %q", got)
	}
	if score := readability.Score(got); score.Ratio < 0.6 {
		t.Fatalf("returned text below ratio gate: %f", score.Ratio)
	}
}

func TestAttemptReturnsEmptyForNoise(t *testing.T) {
	noise := make([]byte, 4096)
	for i := range noise {
		noise[i] = byte((i*131 + 7) % 256)
	}
	got, err := NewScanner(0.6).Attempt(context.Background(), domain.RawDocument{Filename: "x.bin", Data: noise})
	if err != nil {
		t.Fatalf("Attempt() must not fail, got %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty result for noise, got %q", got)
	}
}

func TestFilterLineDropsPDFStructure(t *testing.T) {
	got := filterLine("12 0 obj << /Type /Page /Parent 3 0 R >> endobj")
	if got != "" {
		t.Fatalf("expected structural line to be dropped, got %q", got)
	}
	got = filterLine("0 0 1 rg Photosynthesis needs light and water f")
	if got != "Photosynthesis needs light and water" {
		t.Fatalf("unexpected filtered line %q", got)
	}
}

func TestFilterLineKeepsLiteralWordsInProse(t *testing.T) {
	line := "The statement is true only when null hypotheses are false"
	if got := filterLine(line); got != line {
		t.Fatalf("prose words must survive filtering, got %q", got)
	}
}

func TestNewScannerDefaultsRatio(t *testing.T) {
	if s := NewScanner(0); s.minRatio != DefaultMinRatio {
		t.Fatalf("expected default ratio, got %f", s.minRatio)
	}
}
