package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
	"github.com/kirillkom/exam-prep-extractor/internal/core/ports"
)

// AnalyzeDocumentUseCase turns a raw buffer into text and questions without
// touching any store.
type AnalyzeDocumentUseCase struct {
	extractor ports.TextExtractionService
	segmenter ports.QuestionSegmenter
	refiner   ports.QuestionRefiner
	chunker   ports.Chunker
	observer  ports.ExtractionObserver
	logger    *slog.Logger
}

// NewAnalyzeDocumentUseCase builds the pipeline. refiner and chunker may be nil,
// in which case the segmenter output is final.
func NewAnalyzeDocumentUseCase(
	extractor ports.TextExtractionService,
	segmenter ports.QuestionSegmenter,
	refiner ports.QuestionRefiner,
	chunker ports.Chunker,
	observer ports.ExtractionObserver,
	logger *slog.Logger,
) *AnalyzeDocumentUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeDocumentUseCase{
		extractor: extractor,
		segmenter: segmenter,
		refiner:   refiner,
		chunker:   chunker,
		observer:  observer,
		logger:    logger,
	}
}

func (uc *AnalyzeDocumentUseCase) Analyze(ctx context.Context, doc domain.RawDocument) (*domain.DocumentAnalysis, error) {
	result, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	questions := uc.segmenter.Segment(result.Text, doc.Filename)
	source := domain.SourceSegmenter

	refined, err := uc.refine(ctx, result.Text, doc.Filename)
	if err != nil {
		return nil, err
	}
	if len(refined) > 0 {
		questions = refined
		source = domain.SourceRefiner
	}
	uc.observer.ObserveQuestions(string(source), len(questions))

	return &domain.DocumentAnalysis{
		Filename:       doc.Filename,
		Format:         doc.Format(),
		Extraction:     *result,
		Questions:      questions,
		QuestionSource: source,
	}, nil
}

// refine runs the language model over each chunk. Failing chunks are skipped;
// only cancellation of ctx aborts the whole run.
func (uc *AnalyzeDocumentUseCase) refine(ctx context.Context, text, filename string) ([]domain.QuestionCandidate, error) {
	if uc.refiner == nil {
		return nil, nil
	}
	chunks := []string{text}
	if uc.chunker != nil {
		chunks = uc.chunker.Split(text)
	}

	seen := make(map[string]struct{})
	out := make([]domain.QuestionCandidate, 0)
	for idx, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, domain.WrapError(domain.ErrTemporary, "refine questions", err)
		}
		questions, err := uc.refiner.Refine(ctx, chunk, filename)
		if err != nil {
			if ctx.Err() != nil {
				return nil, domain.WrapError(domain.ErrTemporary, "refine questions", ctx.Err())
			}
			uc.logger.Warn("refine_chunk_failed",
				"filename", filename,
				"chunk", idx+1,
				"chunks", len(chunks),
				"error", err.Error(),
			)
			continue
		}
		for _, q := range questions {
			key := questionKey(q.Question)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			q.Confidence = domain.ClampConfidence(q.Confidence)
			out = append(out, q)
		}
	}
	return out, nil
}
