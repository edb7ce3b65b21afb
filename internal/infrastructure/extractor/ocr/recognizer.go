// Package ocr implements the optical recognition strategy: pages are rendered
// to images and read by a hosted vision model, a local engine, or both.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
	"github.com/kirillkom/exam-prep-extractor/internal/core/ports"
)

const operation = "optical recognition"

type Config struct {
	MaxPages          int
	PageTimeout       time.Duration
	RequestsPerMinute int
}

func DefaultConfig() Config {
	return Config{
		MaxPages:          10,
		PageTimeout:       30 * time.Second,
		RequestsPerMinute: 30,
	}
}

type Recognizer struct {
	renderer ports.PageRenderer
	vision   ports.VisionRecognizer
	local    ports.OCREngine
	limiter  *rate.Limiter
	cfg      Config
	logger   *slog.Logger
}

// NewRecognizer wires the strategy. vision is nil when no hosted credential is
// configured; local is nil when no engine is installed.
func NewRecognizer(
	renderer ports.PageRenderer,
	vision ports.VisionRecognizer,
	local ports.OCREngine,
	cfg Config,
	logger *slog.Logger,
) *Recognizer {
	def := DefaultConfig()
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = def.MaxPages
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = def.PageTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{
		renderer: renderer,
		vision:   vision,
		local:    local,
		limiter:  limiter,
		cfg:      cfg,
		logger:   logger,
	}
}

func (r *Recognizer) Method() domain.ExtractionMethod {
	return domain.MethodOpticalRecognition
}

func (r *Recognizer) Attempt(ctx context.Context, doc domain.RawDocument) (string, error) {
	format := doc.Format()
	if !format.Rasterizable() {
		return "", domain.WrapError(domain.ErrOCRFailure, operation, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format))
	}
	if r.renderer == nil || (r.vision == nil && r.local == nil) {
		return "", domain.WrapError(domain.ErrOCRFailure, operation, errors.New("no recognition engine configured"))
	}

	pages, err := r.renderer.Render(ctx, doc.Data, r.cfg.MaxPages)
	if err != nil {
		return "", domain.WrapError(domain.ErrOCRFailure, operation, fmt.Errorf("render pages: %w", err))
	}
	if len(pages) > r.cfg.MaxPages {
		pages = pages[:r.cfg.MaxPages]
	}

	var session ports.OCRSession
	defer func() {
		if session == nil {
			return
		}
		if err := session.Close(); err != nil {
			r.logger.Warn("ocr_session_close_failed", "method", string(domain.MethodOpticalRecognition), "error", err.Error())
		}
	}()

	texts := make([]string, 0, len(pages))
	var lastErr error
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := r.recognizePage(ctx, page, &session)
		if err != nil {
			lastErr = err
			r.logger.Warn("ocr_page_failed", "method", string(domain.MethodOpticalRecognition), "page", page.Number, "error", err.Error())
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}

	if len(texts) == 0 {
		if lastErr == nil {
			lastErr = errors.New("no page yielded text")
		}
		return "", domain.WrapError(domain.ErrOCRFailure, operation, lastErr)
	}
	return strings.Join(texts, "\n\n"), nil
}

// recognizePage tries the hosted model first, bounded by PageTimeout, and
// falls back to the local engine. The local session is opened on first use.
func (r *Recognizer) recognizePage(ctx context.Context, page ports.RenderedPage, session *ports.OCRSession) (string, error) {
	var hostedErr error
	if r.vision != nil {
		text, err := r.recognizeHosted(ctx, page)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = errors.New("hosted model returned no text")
		}
		hostedErr = err
		r.logger.Warn("vision_ocr_failed", "method", string(domain.MethodOpticalRecognition), "page", page.Number, "error", err.Error())
	}

	if r.local == nil {
		return "", hostedErr
	}
	if *session == nil {
		s, err := r.local.Open()
		if err != nil {
			return "", fmt.Errorf("open local ocr: %w", err)
		}
		*session = s
	}
	text, abandoned, err := r.recognizeLocal(ctx, *session, page)
	if abandoned {
		*session = nil
	}
	return text, err
}

type localResult struct {
	text string
	err  error
}

// recognizeLocal bounds one local recognition by PageTimeout. The engine call
// itself cannot be interrupted, so on timeout the session is abandoned: it is
// closed once the engine returns and must not be reused.
func (r *Recognizer) recognizeLocal(ctx context.Context, session ports.OCRSession, page ports.RenderedPage) (string, bool, error) {
	pageCtx, cancel := context.WithTimeout(ctx, r.cfg.PageTimeout)
	defer cancel()

	done := make(chan localResult, 1)
	go func() {
		text, err := session.Recognize(page.PNG)
		done <- localResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, false, res.err
	case <-pageCtx.Done():
		go func() {
			<-done
			if err := session.Close(); err != nil {
				r.logger.Warn("ocr_session_close_failed", "method", string(domain.MethodOpticalRecognition), "error", err.Error())
			}
		}()
		return "", true, fmt.Errorf("local ocr page %d: %w", page.Number, pageCtx.Err())
	}
}

func (r *Recognizer) recognizeHosted(ctx context.Context, page ports.RenderedPage) (string, error) {
	pageCtx, cancel := context.WithTimeout(ctx, r.cfg.PageTimeout)
	defer cancel()

	if err := r.limiter.Wait(pageCtx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.vision.RecognizePage(pageCtx, page.PNG)
}
