package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

// ExtractionMetrics implements ports.ExtractionObserver.
type ExtractionMetrics struct {
	attempts  *prometheus.CounterVec
	results   *prometheus.CounterVec
	exhausted prometheus.Counter
	questions *prometheus.HistogramVec
}

func NewExtractionMetrics(registerer prometheus.Registerer) *ExtractionMetrics {
	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "strategy_attempts_total",
			Help:      "Strategy runs by method and outcome.",
		},
		[]string{"method", "outcome"},
	)
	results := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "results_total",
			Help:      "Accepted extraction results by winning method.",
		},
		[]string{"method", "degraded"},
	)
	exhausted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "exhausted_total",
			Help:      "Documents for which every method failed.",
		},
	)
	questions := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "questions",
			Name:      "emitted",
			Help:      "Questions produced per document by source.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		},
		[]string{"source"},
	)

	if registerer != nil {
		registerer.MustRegister(attempts, results, exhausted, questions)
	}
	return &ExtractionMetrics{
		attempts:  attempts,
		results:   results,
		exhausted: exhausted,
		questions: questions,
	}
}

func (m *ExtractionMetrics) ObserveAttempt(method domain.ExtractionMethod, outcome string) {
	m.attempts.WithLabelValues(string(method), outcome).Inc()
}

func (m *ExtractionMetrics) ObserveResult(method domain.ExtractionMethod, degraded bool) {
	m.results.WithLabelValues(string(method), strconv.FormatBool(degraded)).Inc()
}

func (m *ExtractionMetrics) ObserveExhausted() {
	m.exhausted.Inc()
}

func (m *ExtractionMetrics) ObserveQuestions(source string, count int) {
	m.questions.WithLabelValues(source).Observe(float64(count))
}
