package ports

import (
	"context"
	"io"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

// DocumentRepository persists document state, extraction output and questions.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveExtraction(ctx context.Context, id string, result domain.ExtractionResult) error
	SaveQuestions(ctx context.Context, id string, questions []domain.QuestionCandidate) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes processing requests.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// QuestionRefiner is the external language-model collaborator that turns text
// into structured questions.
type QuestionRefiner interface {
	Refine(ctx context.Context, text, filename string) ([]domain.QuestionCandidate, error)
}

// Chunker splits text into windows small enough for the refiner.
type Chunker interface {
	Split(text string) []string
}
