package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/arcty/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the assistant's Prometheus collectors.
type Metrics struct {
	Replies    *prometheus.CounterVec
	Greetings  *prometheus.CounterVec
	MatchDepth prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// A *prometheus.Registry is also used to serve them from Handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Replies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arcty_replies_total",
				Help: "Total number of user inputs answered, by whether an answer was found",
			},
			[]string{"matched"},
		),
		Greetings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arcty_greetings_total",
				Help: "Total number of welcomes shown, by greeting kind",
			},
			[]string{"kind"},
		),
		MatchDepth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arcty_match_depth",
				Help:    "Number of patterns matched on the way down the tree per input",
				Buckets: []float64{0, 1, 2, 3, 4, 6, 8},
			},
		),
		gatherer: prometheus.DefaultGatherer,
	}
	reg.MustRegister(m.Replies, m.Greetings, m.MatchDepth)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Hooks records every greeting and reply.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	onReply := func(_ context.Context, e *domain.MatchEvent) {
		m.Replies.WithLabelValues(strconv.FormatBool(e.Answered)).Inc()
		m.MatchDepth.Observe(float64(len(e.Keys)))
	}
	return domain.LifecycleHooks{
		OnGreeting: func(_ context.Context, e *domain.GreetingEvent) {
			m.Greetings.WithLabelValues(string(e.Kind)).Inc()
		},
		OnMatch:   onReply,
		OnNoMatch: onReply,
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
