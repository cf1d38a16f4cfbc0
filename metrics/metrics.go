package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels a finished submission.
type Outcome string

const (
	OutcomeFavorable      Outcome = "favorable"
	OutcomeUnfavorable    Outcome = "unfavorable"
	OutcomeServerError    Outcome = "server_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeInvalidInput   Outcome = "invalid_input"
)

// Recorder receives form submission events.
type Recorder interface {
	RecordSubmission(o Outcome, latency time.Duration)
	RecordStaleResponse()
	SetActiveSessions(n int)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordSubmission(Outcome, time.Duration) {}
func (NopRecorder) RecordStaleResponse()                    {}
func (NopRecorder) SetActiveSessions(int)                   {}

// PromRecorder records submissions in Prometheus metrics.
type PromRecorder struct {
	submissions *prometheus.CounterVec
	latency     prometheus.Histogram
	stale       prometheus.Counter
	sessions    prometheus.Gauge
}

// NewPromRecorder registers the form metrics on the default registerer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on reg. A nil registerer
// defaults to the global one. Collectors already registered are reused.
func NewPromRecorderWithRegistry(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_submissions_total",
		Help: "Form submissions by outcome",
	}, []string{"outcome"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "prediction_latency_seconds",
		Help:    "Round trip time of calls to the prediction endpoint",
		Buckets: prometheus.DefBuckets,
	})
	stale := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prediction_stale_responses_total",
		Help: "Responses discarded because a newer submission was issued",
	})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "form_active_sessions",
		Help: "Form sessions currently held in memory",
	})

	var err error
	if submissions, err = register(reg, submissions); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if stale, err = register(reg, stale); err != nil {
		return nil, err
	}
	if sessions, err = register(reg, sessions); err != nil {
		return nil, err
	}
	return &PromRecorder{submissions: submissions, latency: latency, stale: stale, sessions: sessions}, nil
}

// register returns the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSubmission counts the outcome. Latency is observed only for
// submissions that reached the endpoint.
func (r *PromRecorder) RecordSubmission(o Outcome, latency time.Duration) {
	r.submissions.WithLabelValues(string(o)).Inc()
	if o != OutcomeInvalidInput {
		r.latency.Observe(latency.Seconds())
	}
}

func (r *PromRecorder) RecordStaleResponse() { r.stale.Inc() }

func (r *PromRecorder) SetActiveSessions(n int) { r.sessions.Set(float64(n)) }

// Counter registers a labelled counter on reg, reusing an existing one.
func Counter(reg prometheus.Registerer, name, help string, labels ...string) (*prometheus.CounterVec, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels))
}
