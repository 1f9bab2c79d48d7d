package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jwebster45206/storyweaver/pkg/generator"
)

var (
	llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyweaver_llm_requests_total",
			Help: "Total number of requests to the LLM provider.",
		},
		[]string{"provider", "status"}, // status: ok or a generator error kind
	)
	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyweaver_llm_request_duration_seconds",
			Help:    "Histogram of LLM request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)

// InstrumentedLLM records Prometheus metrics around another LLMService.
type InstrumentedLLM struct {
	next     LLMService
	provider string
}

// Ensure InstrumentedLLM implements LLMService interface
var _ LLMService = (*InstrumentedLLM)(nil)

func NewInstrumentedLLM(next LLMService, provider string) *InstrumentedLLM {
	return &InstrumentedLLM{next: next, provider: provider}
}

func (i *InstrumentedLLM) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	start := time.Now()
	text, err := i.next.Complete(ctx, systemPrompt, userPrompt, temperature)
	llmRequestDuration.WithLabelValues(i.provider).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = string(generator.KindOf(err))
	}
	llmRequestsTotal.WithLabelValues(i.provider, status).Inc()
	return text, err
}

func (i *InstrumentedLLM) Ping(ctx context.Context) error {
	return i.next.Ping(ctx)
}
