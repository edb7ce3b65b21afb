package ports

import (
	"context"
	"io"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// TextExtractionService turns an uploaded buffer into readable text.
type TextExtractionService interface {
	Extract(ctx context.Context, doc domain.RawDocument) (*domain.ExtractionResult, error)
}

// QuestionSegmenter splits cleaned text into question/answer pairs.
type QuestionSegmenter interface {
	Segment(text, filename string) []domain.QuestionCandidate
}
