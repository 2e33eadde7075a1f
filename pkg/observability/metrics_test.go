package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func scrape(m *observability.Metrics) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnGreeting(ctx, &domain.GreetingEvent{Kind: domain.GreetingMorning})
	hooks.OnGreeting(ctx, &domain.GreetingEvent{Kind: domain.GreetingMorning})
	hooks.OnMatch(ctx, &domain.MatchEvent{Keys: []string{"hello", "world"}, Answered: true})
	hooks.OnNoMatch(ctx, &domain.MatchEvent{})

	body := scrape(m)
	assert.Contains(t, body, `arcty_greetings_total{kind="morning"} 2`)
	assert.Contains(t, body, `arcty_replies_total{matched="true"} 1`)
	assert.Contains(t, body, `arcty_replies_total{matched="false"} 1`)
	assert.Contains(t, body, "arcty_match_depth_sum 2")
	assert.Contains(t, body, "arcty_match_depth_count 2")
}

func TestCombine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := observability.NewMetrics(prometheus.NewRegistry())

	var seen []string
	custom := domain.LifecycleHooks{
		OnNoMatch: func(_ context.Context, e *domain.MatchEvent) { seen = append(seen, e.SessionID) },
	}

	hooks := observability.Combine(m.Hooks(), observability.LogHooks(logger), custom)
	hooks.OnNoMatch(context.Background(), &domain.MatchEvent{SessionID: "s1", Input: "my secret"})

	assert.Equal(t, []string{"s1"}, seen)
	assert.Contains(t, scrape(m), `arcty_replies_total{matched="false"} 1`)
	assert.Contains(t, buf.String(), "no_match")
	assert.NotContains(t, buf.String(), "my secret", "inputs are not logged")

	empty := observability.Combine()
	assert.Nil(t, empty.OnMatch)
}
