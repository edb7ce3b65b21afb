package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/exam-prep-extractor/internal/config"
	"github.com/kirillkom/exam-prep-extractor/internal/core/ports"
	"github.com/kirillkom/exam-prep-extractor/internal/core/usecase"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/queue/nats"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      *postgres.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	Pipeline  *Pipeline

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, opts PipelineOptions) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pipeline, err := NewPipeline(cfg, opts)
	if err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: pipeline.Executor,
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue, cfg.MaxDocumentBytes)
	processUC := usecase.NewProcessDocumentUseCase(repo, storage, pipeline.Analyzer, logger)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		Pipeline:  pipeline,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
