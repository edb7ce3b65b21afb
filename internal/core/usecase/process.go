package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
	"github.com/kirillkom/exam-prep-extractor/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo     ports.DocumentRepository
	storage  ports.ObjectStorage
	analyzer *AnalyzeDocumentUseCase
	logger   *slog.Logger
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	analyzer *AnalyzeDocumentUseCase,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		repo:     repo,
		storage:  storage,
		analyzer: analyzer,
		logger:   logger,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	analysis, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	uc.logger.Info("document_processed",
		"document_id", documentID,
		"method", string(analysis.Extraction.Method),
		"degraded", analysis.Extraction.Degraded,
		"questions", len(analysis.Questions),
		"question_source", string(analysis.QuestionSource),
	)
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	data, err := uc.readSource(ctx, doc)
	if err != nil {
		return nil, err
	}

	analysis, err := uc.analyzer.Analyze(ctx, domain.RawDocument{Filename: doc.Filename, Data: data})
	if err != nil {
		return nil, err
	}

	if err := uc.repo.SaveExtraction(ctx, doc.ID, analysis.Extraction); err != nil {
		return nil, fmt.Errorf("save extraction: %w", err)
	}
	if err := uc.repo.SaveQuestions(ctx, doc.ID, analysis.Questions); err != nil {
		return nil, fmt.Errorf("save questions: %w", err)
	}
	return analysis, nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) readSource(ctx context.Context, doc *domain.Document) ([]byte, error) {
	rc, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}
	return data, nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

// markFailed records a user-facing reason. Exhaustion is reported by its own
// message, which names every attempted method.
func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	message := processErr.Error()
	var exhausted *domain.ExhaustedError
	if errors.As(processErr, &exhausted) {
		message = exhausted.Error()
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, message)
}
