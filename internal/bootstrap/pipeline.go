package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/exam-prep-extractor/internal/config"
	"github.com/kirillkom/exam-prep-extractor/internal/core/ports"
	"github.com/kirillkom/exam-prep-extractor/internal/core/usecase"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/chunking"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/extractor/alternate"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/extractor/ocr"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/extractor/ocr/fitz"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/extractor/ocr/tesseract"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/extractor/rawscan"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/extractor/structural"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/llm/openaicompat"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/resilience"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/rules"
)

// Pipeline holds the stateless extraction and segmentation services. It needs
// no database or queue, so the CLI and MCP server use it directly.
type Pipeline struct {
	Extractor *usecase.ExtractTextUseCase
	Segmenter *usecase.SegmentQuestionsUseCase
	Analyzer  *usecase.AnalyzeDocumentUseCase
	Executor  *resilience.Executor
}

type PipelineOptions struct {
	// DisableRefinement skips the language model even when a key is configured.
	DisableRefinement bool
	Observer          ports.ExtractionObserver
	Logger            *slog.Logger
}

func NewPipeline(cfg config.Config, opts PipelineOptions) (*Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	policy := cfg.ArbitrationPolicy()
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("extraction policy: %w", err)
	}
	classification, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load classification rules: %w", err)
	}

	resilienceCfg := cfg.Resilience().WithAttemptTimeout(time.Duration(cfg.LLMTimeoutSeconds) * time.Second)
	executor := resilience.NewExecutorWithLogger(resilienceCfg, logger)

	var vision ports.VisionRecognizer
	if cfg.VisionEnabled() {
		vision = openaicompat.NewVisionRecognizer(openaicompat.New(openaicompat.Config{
			BaseURL:     cfg.VisionBaseURL,
			APIKey:      cfg.VisionAPIKey,
			Model:       cfg.VisionModel,
			Timeout:     time.Duration(cfg.VisionTimeoutSeconds) * time.Second,
			MaxTokens:   4096,
			Temperature: 0,
		}, executor, logger))
	}
	var local ports.OCREngine
	if cfg.OCRLocalEnabled {
		local = tesseract.NewEngine(cfg.OCRLanguages)
	}

	recognizer := ocr.NewRecognizer(
		fitz.NewRenderer(cfg.OCRRenderDPI),
		vision,
		local,
		ocr.Config{
			MaxPages:          cfg.OCRMaxPages,
			PageTimeout:       time.Duration(cfg.VisionTimeoutSeconds) * time.Second,
			RequestsPerMinute: cfg.VisionRequestsPerMinute,
		},
		logger,
	)

	extractor := usecase.NewExtractTextUseCase(
		policy,
		opts.Observer,
		logger,
		structural.NewParser(logger),
		alternate.NewParser(logger),
		recognizer,
		rawscan.NewScanner(cfg.RawScanMinRatio),
	)
	segmenter := usecase.NewSegmentQuestionsUseCase(classification)

	var refiner ports.QuestionRefiner
	if cfg.RefinementEnabled() && !opts.DisableRefinement {
		refiner = openaicompat.NewRefiner(openaicompat.New(openaicompat.Config{
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      cfg.LLMAPIKey,
			Model:       cfg.LLMModel,
			Timeout:     time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: float32(cfg.LLMTemperature),
		}, executor, logger))
	}
	chunker := chunking.NewSplitter(cfg.LLMChunkSize, cfg.LLMChunkOverlap)

	return &Pipeline{
		Extractor: extractor,
		Segmenter: segmenter,
		Analyzer:  usecase.NewAnalyzeDocumentUseCase(extractor, segmenter, refiner, chunker, opts.Observer, logger),
		Executor:  executor,
	}, nil
}
