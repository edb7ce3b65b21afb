package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kirillkom/exam-prep-extractor/internal/bootstrap"
	"github.com/kirillkom/exam-prep-extractor/internal/config"
	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
	"github.com/kirillkom/exam-prep-extractor/internal/observability/logging"
)

const serviceName = "extract"

func main() {
	var (
		file     = flag.String("file", "", "document to analyze locally")
		refine   = flag.Bool("refine", true, "use the language model when configured")
		enqueue  = flag.Bool("enqueue", false, "upload -file for asynchronous processing instead of analyzing it here")
		document = flag.String("document", "", "print status and questions of a stored document")
	)
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewStderr(serviceName, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := bootstrap.PipelineOptions{DisableRefinement: !*refine, Logger: logger}

	var err error
	switch {
	case *document != "":
		err = showDocument(ctx, cfg, opts, *document)
	case *file != "" && *enqueue:
		err = enqueueFile(ctx, cfg, opts, *file)
	case *file != "":
		err = analyzeFile(ctx, cfg, opts, *file)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("extract_failed", "error", err.Error())
		os.Exit(exitCode(err))
	}
}

func analyzeFile(ctx context.Context, cfg config.Config, opts bootstrap.PipelineOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	pipeline, err := bootstrap.NewPipeline(cfg, opts)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.ProcessTimeout())
	defer cancel()

	analysis, err := pipeline.Analyzer.Analyze(ctx, domain.RawDocument{Filename: filepath.Base(path), Data: data})
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, analysis)
}

func enqueueFile(ctx context.Context, cfg config.Config, opts bootstrap.PipelineOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	app, err := bootstrap.New(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	doc, err := app.IngestUC.Upload(ctx, filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)), f)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, doc)
}

func showDocument(ctx context.Context, cfg config.Config, opts bootstrap.PipelineOptions, id string) error {
	app, err := bootstrap.New(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	doc, err := app.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	questions, err := app.Repo.ListQuestions(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, struct {
		Document  *domain.Document           `json:"document"`
		Questions []domain.QuestionCandidate `json:"questions"`
	}{doc, questions})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedFormat):
		return 2
	case errors.Is(err, domain.ErrAllMethodsExhausted):
		return 3
	case errors.Is(err, domain.ErrDocumentNotFound):
		return 4
	default:
		return 1
	}
}
