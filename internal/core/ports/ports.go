package ports

import (
	"context"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

// ExtractionStrategy is one technique in the fallback chain. Attempt returns
// raw (unnormalized) text; an empty string with a nil error means nothing usable
// was found.
type ExtractionStrategy interface {
	Method() domain.ExtractionMethod
	Attempt(ctx context.Context, doc domain.RawDocument) (string, error)
}

// RenderedPage is a rasterised page encoded as PNG.
type RenderedPage struct {
	Number int
	PNG    []byte
}

// PageRenderer rasterises up to maxPages pages of a document.
type PageRenderer interface {
	Render(ctx context.Context, data []byte, maxPages int) ([]RenderedPage, error)
}

// VisionRecognizer reads text off a page image using a hosted model.
type VisionRecognizer interface {
	RecognizePage(ctx context.Context, png []byte) (string, error)
}

// OCREngine opens local recognition sessions. Sessions hold native resources
// and must be closed by the caller.
type OCREngine interface {
	Open() (OCRSession, error)
}

type OCRSession interface {
	Recognize(png []byte) (string, error)
	Close() error
}

// ExtractionObserver receives strategy outcomes, typically for metrics.
type ExtractionObserver interface {
	ObserveAttempt(method domain.ExtractionMethod, outcome string)
	ObserveResult(method domain.ExtractionMethod, degraded bool)
	ObserveExhausted()
	ObserveQuestions(source string, count int)
}
