package main

import (
	"os"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/exam-prep-extractor/internal/adapters/mcp"
	"github.com/kirillkom/exam-prep-extractor/internal/bootstrap"
	"github.com/kirillkom/exam-prep-extractor/internal/config"
	"github.com/kirillkom/exam-prep-extractor/internal/observability/logging"
)

const (
	serviceName = "exam-prep-mcp"
	version     = "0.1.0"
)

func main() {
	cfg := config.Load()
	logger := logging.NewStderr(serviceName, cfg.LogLevel, cfg.LogFormat)

	pipeline, err := bootstrap.NewPipeline(cfg, bootstrap.PipelineOptions{Logger: logger})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err.Error())
		os.Exit(1)
	}

	s := server.NewMCPServer(serviceName, version, server.WithToolCapabilities(false))
	mcpadapter.NewTools(pipeline.Extractor, pipeline.Segmenter, pipeline.Analyzer, cfg.MaxDocumentBytes).Register(s)

	logger.Info("mcp_serving_stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Error("mcp_server_failed", "error", err.Error())
		os.Exit(1)
	}
}
