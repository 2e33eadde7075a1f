package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arcty"
	"github.com/aretw0/arcty/pkg/adapters/file"
	httpadapter "github.com/aretw0/arcty/pkg/adapters/http"
	"github.com/aretw0/arcty/pkg/adapters/memory"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/observability"
	"github.com/aretw0/arcty/pkg/runner"
	"github.com/aretw0/arcty/pkg/script"
	"github.com/aretw0/arcty/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScript = `
welcome: Hi, I am Arcty
prompts: ["What may I help you with?"]
fallback: Sorry?
paths:
  - pattern: hello
    paths:
      - pattern: world
        answer: hi!
        actions:
          - type: click
            selector: "#menu"
  - pattern: /^bye$/i
    answer: Goodbye!
  - pattern: refund
`

func newAssistant(t *testing.T, opts ...arcty.Option) *arcty.Assistant {
	t.Helper()
	s, err := script.Parse([]byte(testScript), script.FormatYAML)
	require.NoError(t, err)
	opts = append([]arcty.Option{arcty.WithScript(s), arcty.WithTimeBreaks(false)}, opts...)
	a, err := arcty.New("", opts...)
	require.NoError(t, err)
	return a
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Conversation(t *testing.T) {
	h := httpadapter.NewHandler(newAssistant(t), session.NewManager(memory.NewStore()))

	w := do(t, h, http.MethodPost, "/sessions/s1/welcome", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var welcome runner.Turn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &welcome))
	assert.True(t, welcome.State.Seen)
	require.Len(t, welcome.Reply.Messages, 2)
	assert.Equal(t, "Hi, I am Arcty", welcome.Reply.Messages[0].Text)

	w = do(t, h, http.MethodPost, "/sessions/s1/messages", `{"input": "hello world"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var turn runner.Turn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.True(t, turn.Reply.Matched)
	assert.Equal(t, []string{"hello", "world"}, turn.Reply.Keys)
	assert.Equal(t, domain.Plan{{Type: domain.ActionClick, Selector: "#menu"}}, turn.Reply.Plan)
	assert.Len(t, turn.State.Transcript, 4)

	w = do(t, h, http.MethodGet, "/sessions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var state domain.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Len(t, state.Transcript, 4)

	w = do(t, h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["s1"]`, w.Body.String())

	w = do(t, h, http.MethodDelete, "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_MessageWithoutWelcome(t *testing.T) {
	h := httpadapter.NewHandler(newAssistant(t), session.NewManager(memory.NewStore()))

	w := do(t, h, http.MethodPost, "/sessions/fresh/messages", `{"input": "refund"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var turn runner.Turn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.False(t, turn.Reply.Matched)
	assert.Equal(t, "Sorry?", turn.Reply.Messages[len(turn.Reply.Messages)-1].Text)
	assert.False(t, turn.State.Seen)
}

func TestServer_BadRequests(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "8")
	h := httpadapter.NewHandler(newAssistant(t), session.NewManager(file.New(t.TempDir())))

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"Malformed Body", "/sessions/s1/messages", `{"input":`, http.StatusBadRequest},
		{"Missing Input", "/sessions/s1/messages", `{}`, http.StatusBadRequest},
		{"Input Too Large", "/sessions/s1/messages", `{"input": "much too long"}`, http.StatusBadRequest},
		{"Invalid Session ID", "/sessions/tmp-1/messages", `{"input": "hi"}`, http.StatusBadRequest},
		{"Evaluate Without Input", "/evaluate", `{"text": "hi"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestServer_Introspection(t *testing.T) {
	h := httpadapter.NewHandler(newAssistant(t), session.NewManager(memory.NewStore()))

	w := do(t, h, http.MethodGet, "/paths", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hello":{"world":"hi!"},"/^bye$/i":"Goodbye!","refund":null}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/verify", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"complete":false,"incomplete":[["refund"]]}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/evaluate", `{"input": "Bye"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"Goodbye!","matched":true}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/evaluate", `{"input": "hello"}`)
	assert.JSONEq(t, `{"answer":"","matched":false}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/health", "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	assert.Contains(t, w.Body.String(), `"app":"arcty-http"`)
}

func TestServer_Metrics(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	a := newAssistant(t, arcty.WithLifecycleHooks(metrics.Hooks()))
	h := httpadapter.NewHandler(a, session.NewManager(memory.NewStore()), httpadapter.WithMetrics(metrics.Handler()))

	do(t, h, http.MethodPost, "/sessions/s1/welcome", "")
	do(t, h, http.MethodPost, "/sessions/s1/messages", `{"input": "bye"}`)

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `arcty_replies_total{matched="true"} 1`)
	assert.Contains(t, w.Body.String(), `arcty_greetings_total{kind="first_visit"} 1`)
}

func TestServer_NoMetricsByDefault(t *testing.T) {
	h := httpadapter.NewHandler(newAssistant(t), session.NewManager(memory.NewStore()))
	w := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CORS(t *testing.T) {
	h := httpadapter.NewHandler(newAssistant(t), session.NewManager(memory.NewStore()))
	w := do(t, h, http.MethodOptions, "/sessions/s1/messages", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// reloading is an assistant whose script reload events are canned.
type reloading struct {
	*arcty.Assistant
	events []string
}

func (r reloading) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, len(r.events))
	for _, e := range r.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

func TestSubscribeEvents_Reloads(t *testing.T) {
	a := reloading{Assistant: newAssistant(t), events: []string{"/tmp/bot.yaml"}}
	h := httpadapter.NewHandler(a, session.NewManager(memory.NewStore()))

	w := do(t, h, http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: ping")
	assert.Contains(t, w.Body.String(), "data: /tmp/bot.yaml")
}

func TestSubscribeEvents_Session(t *testing.T) {
	srv := httptest.NewServer(httpadapter.NewHandler(newAssistant(t), session.NewManager(memory.NewStore())))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?session_id=s1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	post, err := http.Post(srv.URL+"/sessions/s1/messages", "application/json", strings.NewReader(`{"input": "bye"}`))
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusOK, post.StatusCode)

	var data string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: {") {
			data = strings.TrimPrefix(lines.Text(), "data: ")
			break
		}
	}
	var reply domain.Reply
	require.NoError(t, json.Unmarshal([]byte(data), &reply))
	assert.True(t, reply.Matched)
	assert.Equal(t, "Goodbye!", reply.Messages[len(reply.Messages)-1].Text)
}
