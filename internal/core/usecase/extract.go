package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
	"github.com/kirillkom/exam-prep-extractor/internal/core/ports"
	"github.com/kirillkom/exam-prep-extractor/internal/core/readability"
)

const (
	OutcomeAccepted  = "accepted"
	OutcomeRetained  = "retained"
	OutcomeDiscarded = "discarded"
	OutcomeFailed    = "failed"
)

// ExtractTextUseCase runs extraction strategies in fixed priority order and
// arbitrates between the candidates they produce.
type ExtractTextUseCase struct {
	strategies []ports.ExtractionStrategy
	policy     domain.ArbitrationPolicy
	observer   ports.ExtractionObserver
	logger     *slog.Logger
}

func NewExtractTextUseCase(
	policy domain.ArbitrationPolicy,
	observer ports.ExtractionObserver,
	logger *slog.Logger,
	strategies ...ports.ExtractionStrategy,
) *ExtractTextUseCase {
	ordered := make([]ports.ExtractionStrategy, 0, len(strategies))
	for _, strategy := range strategies {
		if strategy != nil {
			ordered = append(ordered, strategy)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Method().Priority() < ordered[j].Method().Priority()
	})
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractTextUseCase{
		strategies: ordered,
		policy:     policy,
		observer:   observer,
		logger:     logger,
	}
}

func (uc *ExtractTextUseCase) Extract(ctx context.Context, doc domain.RawDocument) (*domain.ExtractionResult, error) {
	if len(doc.Data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty document"))
	}

	logger := uc.logger.With("filename", doc.Filename, "format", string(doc.Format()), "bytes", len(doc.Data))
	attempts := make([]domain.MethodAttempt, 0, len(uc.strategies))
	candidates := make([]domain.ExtractionCandidate, 0, len(uc.strategies))

	for _, strategy := range uc.strategies {
		if err := ctx.Err(); err != nil {
			return nil, domain.WrapError(domain.ErrTemporary, "extract text", err)
		}

		method := strategy.Method()
		started := time.Now()
		raw, err := uc.runStrategy(ctx, strategy, doc, logger)
		if err != nil {
			attempts = append(attempts, domain.MethodAttempt{Method: method, Err: err})
			uc.observer.ObserveAttempt(method, OutcomeFailed)
			logger.Warn("strategy_failed",
				"method", string(method),
				"duration_ms", time.Since(started).Milliseconds(),
				"error", err.Error(),
			)
			continue
		}

		text := readability.Normalize(raw)
		candidate := domain.ExtractionCandidate{
			Text:   text,
			Method: method,
			Length: readability.Length(text),
			Score:  readability.Score(text),
		}
		attempts = append(attempts, domain.MethodAttempt{
			Method: method,
			Length: candidate.Length,
			Ratio:  candidate.Score.Ratio,
		})
		logger.Debug("strategy_finished",
			"method", string(method),
			"length", candidate.Length,
			"ratio", candidate.Score.Ratio,
			"garbled", candidate.Score.IsGarbled,
			"duration_ms", time.Since(started).Milliseconds(),
		)

		if method == domain.MethodRawByteScan {
			candidates = append(candidates, candidate)
			uc.observer.ObserveAttempt(method, OutcomeRetained)
			continue
		}
		if candidate.Length > uc.policy.EarlyExitLength && !candidate.Score.IsGarbled {
			uc.observer.ObserveAttempt(method, OutcomeAccepted)
			logger.Info("extraction_early_exit", "method", string(method), "length", candidate.Length)
			return uc.accept(candidate, false, attempts), nil
		}
		if candidate.Length > uc.policy.RetainLength {
			candidates = append(candidates, candidate)
			uc.observer.ObserveAttempt(method, OutcomeRetained)
			continue
		}
		uc.observer.ObserveAttempt(method, OutcomeDiscarded)
	}

	result, ok := uc.arbitrate(candidates, attempts)
	if !ok {
		uc.observer.ObserveExhausted()
		exhausted := &domain.ExhaustedError{Attempts: attempts}
		logger.Error("extraction_exhausted", "methods", fmt.Sprint(exhausted.Methods()))
		return nil, exhausted
	}
	logger.Info("extraction_arbitrated",
		"method", string(result.Method),
		"degraded", result.Degraded,
		"ratio", result.Score.Ratio,
		"candidates", len(candidates),
	)
	return result, nil
}

// arbitrate prefers the longest candidate meeting the acceptance threshold and
// falls back to the longest overall when it clears the degraded threshold.
func (uc *ExtractTextUseCase) arbitrate(candidates []domain.ExtractionCandidate, attempts []domain.MethodAttempt) (*domain.ExtractionResult, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	ranked := make([]domain.ExtractionCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Length > ranked[j].Length
	})

	for _, candidate := range ranked {
		if candidate.Score.Ratio >= uc.policy.AcceptRatio && candidate.Length >= uc.policy.AcceptLength {
			return uc.accept(candidate, false, attempts), true
		}
	}

	longest := ranked[0]
	if longest.Score.Ratio >= uc.policy.DegradedRatio && longest.Length >= uc.policy.DegradedLength {
		return uc.accept(longest, true, attempts), true
	}
	return nil, false
}

func (uc *ExtractTextUseCase) accept(candidate domain.ExtractionCandidate, degraded bool, attempts []domain.MethodAttempt) *domain.ExtractionResult {
	uc.observer.ObserveResult(candidate.Method, degraded)
	return &domain.ExtractionResult{
		Text:     candidate.Text,
		Method:   candidate.Method,
		Score:    candidate.Score,
		Degraded: degraded,
		Attempts: attempts,
	}
}

// runStrategy turns a panicking strategy into a failed attempt so the
// remaining strategies still run.
func (uc *ExtractTextUseCase) runStrategy(
	ctx context.Context,
	strategy ports.ExtractionStrategy,
	doc domain.RawDocument,
	logger *slog.Logger,
) (text string, err error) {
	method := strategy.Method()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logger.Error("strategy_panic", "method", string(method), "panic", fmt.Sprint(r))
		kind := domain.ErrParseFailure
		if method == domain.MethodOpticalRecognition {
			kind = domain.ErrOCRFailure
		}
		text, err = "", domain.WrapError(kind, string(method), fmt.Errorf("strategy panic: %v", r))
	}()
	return strategy.Attempt(ctx, doc)
}

type noopObserver struct{}

func (noopObserver) ObserveAttempt(domain.ExtractionMethod, string) {}
func (noopObserver) ObserveResult(domain.ExtractionMethod, bool)    {}
func (noopObserver) ObserveExhausted()                              {}
func (noopObserver) ObserveQuestions(string, int)                   {}
