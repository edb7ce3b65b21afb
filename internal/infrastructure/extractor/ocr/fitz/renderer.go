// Package fitz renders document pages to PNG with MuPDF.
package fitz

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	gofitz "github.com/gen2brain/go-fitz"

	"github.com/kirillkom/exam-prep-extractor/internal/core/ports"
)

const DefaultDPI = 200

type Renderer struct {
	dpi float64
}

func NewRenderer(dpi int) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{dpi: float64(dpi)}
}

func (r *Renderer) Render(ctx context.Context, data []byte, maxPages int) ([]ports.RenderedPage, error) {
	doc, err := gofitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	pages := make([]ports.RenderedPage, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, r.dpi)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		pages = append(pages, ports.RenderedPage{Number: i + 1, PNG: buf.Bytes()})
	}
	return pages, nil
}
