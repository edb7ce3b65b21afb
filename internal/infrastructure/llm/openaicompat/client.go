// Package openaicompat talks to OpenAI-compatible chat-completion endpoints
// (Groq, OpenAI, local gateways) for question refinement and page OCR.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/exam-prep-extractor/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float32
}

type Client struct {
	inner    *openai.Client
	cfg      Config
	executor *resilience.Executor
	logger   *slog.Logger
}

func New(cfg Config, executor *resilience.Executor, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		inner:    openai.NewClientWithConfig(oc),
		cfg:      cfg,
		executor: executor,
		logger:   logger,
	}
}

var errEmptyCompletion = errors.New("empty completion")

func (c *Client) complete(ctx context.Context, operation string, messages []openai.ChatCompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	started := time.Now()
	resp, err := resilience.Call(ctx, c.executor, operation, func(ctx context.Context) (openai.ChatCompletionResponse, error) {
		return c.inner.CreateChatCompletion(ctx, req)
	}, classifyCompletionError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, fmt.Errorf("%s: %w", operation, err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", operation, errEmptyCompletion)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		c.logger.Warn("completion_truncated", "operation", operation, "model", c.cfg.Model)
	}
	c.logger.Debug("completion_done",
		"operation", operation,
		"model", c.cfg.Model,
		"duration_ms", float64(time.Since(started).Microseconds())/1000.0,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return strings.TrimSpace(choice.Message.Content), nil
}
