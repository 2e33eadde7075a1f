package runtime_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aretw0/arcty/internal/runtime"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/script"
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

func newBundle(t *testing.T) *script.Bundle {
	t.Helper()
	s, err := script.Parse([]byte(testScript), script.FormatYAML)
	require.NoError(t, err)
	b, err := s.Build()
	require.NoError(t, err)
	return b
}

// fakeClock is advanced by hand.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func at(hour, min int) time.Time {
	return time.Date(2024, time.March, 5, hour, min, 0, 0, time.UTC) // a Tuesday
}

func TestEngine_Welcome(t *testing.T) {
	clock := &fakeClock{now: at(9, 30)}
	engine := runtime.NewEngine(newBundle(t), runtime.WithClock(clock.Now))
	ctx := context.Background()

	t.Run("First Visit", func(t *testing.T) {
		state := domain.NewState("s1")
		next, reply, err := engine.Welcome(ctx, state)
		require.NoError(t, err)

		require.Len(t, reply.Messages, 3)
		assert.Equal(t, domain.Message{Kind: domain.MessageTimeBreak, Text: "Tue 9:30 am", At: clock.now}, reply.Messages[0])
		assert.Equal(t, domain.BotMessage("Hi, I am Arcty", clock.now), reply.Messages[1])
		assert.Equal(t, domain.BotMessage("What may I help you with?", clock.now), reply.Messages[2])

		assert.True(t, next.Seen)
		assert.Equal(t, clock.now, next.LastTimestamp)
		assert.Equal(t, reply.Messages, next.Transcript)

		// The input state is left alone.
		assert.False(t, state.Seen)
		assert.Empty(t, state.Transcript)
	})

	t.Run("Returning Visitor", func(t *testing.T) {
		state := domain.NewState("s2")
		state.Seen = true
		_, reply, err := engine.Welcome(ctx, state)
		require.NoError(t, err)

		require.Len(t, reply.Messages, 2)
		assert.Equal(t, script.DefaultGreetings.Morning, reply.Messages[0].Text)
		assert.Equal(t, "What may I help you with?", reply.Messages[1].Text)
	})

	t.Run("Nil State", func(t *testing.T) {
		_, _, err := engine.Welcome(ctx, nil)
		assert.ErrorIs(t, err, runtime.ErrNoState)
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := engine.Welcome(cctx, domain.NewState("s3"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBucket(t *testing.T) {
	tests := []struct {
		hour int
		want domain.GreetingKind
	}{
		{0, domain.GreetingAfterHours},
		{5, domain.GreetingAfterHours},
		{6, domain.GreetingMorning},
		{12, domain.GreetingMorning},
		{13, domain.GreetingAfternoon},
		{17, domain.GreetingAfternoon},
		{18, domain.GreetingEvening},
		{21, domain.GreetingEvening},
		{22, domain.GreetingAfterHours},
		{23, domain.GreetingAfterHours},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, runtime.Bucket(at(tt.hour, 0)), "hour %d", tt.hour)
	}
}

func TestEngine_Reply(t *testing.T) {
	clock := &fakeClock{now: at(14, 0)}
	engine := runtime.NewEngine(newBundle(t), runtime.WithClock(clock.Now))
	ctx := context.Background()

	state, _, err := engine.Welcome(ctx, domain.NewState("s1"))
	require.NoError(t, err)

	t.Run("Answer With Plan", func(t *testing.T) {
		next, reply, err := engine.Reply(ctx, state, "hello world")
		require.NoError(t, err)

		assert.True(t, reply.Matched)
		assert.Equal(t, []string{"hello", "world"}, reply.Keys)
		require.Len(t, reply.Messages, 2)
		assert.Equal(t, domain.UserMessage("hello world", clock.now), reply.Messages[0])
		assert.Equal(t, domain.BotMessage("hi!", clock.now), reply.Messages[1])
		assert.Equal(t, domain.Plan{{Type: domain.ActionClick, Selector: "#menu"}}, reply.Plan)
		assert.Len(t, next.Transcript, len(state.Transcript)+2)
	})

	t.Run("Fallback", func(t *testing.T) {
		for _, input := range []string{"hello there", "goodbye", "refund please"} {
			_, reply, err := engine.Reply(ctx, state, input)
			require.NoError(t, err)
			assert.False(t, reply.Matched, input)
			assert.Equal(t, "Sorry?", reply.Messages[len(reply.Messages)-1].Text, input)
			assert.Nil(t, reply.Plan, input)
		}
	})

	t.Run("Time Break After Quiet Period", func(t *testing.T) {
		clock.Advance(4 * time.Minute)
		next, reply, err := engine.Reply(ctx, state, "BYE")
		require.NoError(t, err)
		assert.Len(t, reply.Messages, 2)
		assert.Equal(t, "Goodbye!", reply.Messages[1].Text)

		clock.Advance(time.Minute)
		next, reply, err = engine.Reply(ctx, next, "bye")
		require.NoError(t, err)
		require.Len(t, reply.Messages, 3)
		assert.Equal(t, domain.MessageTimeBreak, reply.Messages[0].Kind)
		assert.Equal(t, "Tue 2:05 pm", reply.Messages[0].Text)
		assert.Equal(t, clock.now, next.LastTimestamp)
	})
}

func TestEngine_TimeBreaksDisabled(t *testing.T) {
	engine := runtime.NewEngine(newBundle(t), runtime.WithTimeBreaks(false))

	next, reply, err := engine.Welcome(context.Background(), domain.NewState("s1"))
	require.NoError(t, err)
	assert.Len(t, reply.Messages, 2)
	assert.True(t, next.LastTimestamp.IsZero())
}

func TestEngine_RandomPrompt(t *testing.T) {
	b := newBundle(t)
	b.Script.Prompts = script.DefaultPrompts

	seen := make(map[string]bool)
	engine := runtime.NewEngine(b, runtime.WithRand(rand.New(rand.NewPCG(1, 2))), runtime.WithTimeBreaks(false))
	for i := 0; i < 200; i++ {
		_, reply, err := engine.Welcome(context.Background(), domain.NewState("s"))
		require.NoError(t, err)
		seen[reply.Messages[1].Text] = true
	}
	assert.Len(t, seen, len(script.DefaultPrompts))
	for p := range seen {
		assert.Contains(t, script.DefaultPrompts, p)
	}
}

func TestEngine_NoPrompts(t *testing.T) {
	b := newBundle(t)
	b.Script.Prompts = nil
	engine := runtime.NewEngine(b, runtime.WithTimeBreaks(false))

	next, reply, err := engine.Welcome(context.Background(), domain.NewState("s1"))
	require.NoError(t, err)
	require.Len(t, reply.Messages, 1)
	assert.Equal(t, "Hi, I am Arcty", reply.Messages[0].Text)
	assert.Len(t, next.Transcript, 1)
}

func TestEngine_Hooks(t *testing.T) {
	var greetings []domain.GreetingKind
	var matched, missed []string

	hooks := domain.LifecycleHooks{
		OnGreeting: func(_ context.Context, e *domain.GreetingEvent) { greetings = append(greetings, e.Kind) },
		OnMatch:    func(_ context.Context, e *domain.MatchEvent) { matched = append(matched, e.Input) },
		OnNoMatch:  func(_ context.Context, e *domain.MatchEvent) { missed = append(missed, e.Input) },
	}
	clock := &fakeClock{now: at(20, 0)}
	engine := runtime.NewEngine(newBundle(t), runtime.WithClock(clock.Now), runtime.WithLifecycleHooks(hooks))
	ctx := context.Background()

	state, _, err := engine.Welcome(ctx, domain.NewState("s1"))
	require.NoError(t, err)
	_, _, err = engine.Welcome(ctx, state)
	require.NoError(t, err)
	_, _, err = engine.Reply(ctx, state, "bye")
	require.NoError(t, err)
	_, _, err = engine.Reply(ctx, state, "refund")
	require.NoError(t, err)

	assert.Equal(t, []domain.GreetingKind{domain.GreetingFirstVisit, domain.GreetingEvening}, greetings)
	assert.Equal(t, []string{"bye"}, matched)
	assert.Equal(t, []string{"refund"}, missed)
}

func TestEngine_Swap(t *testing.T) {
	engine := runtime.NewEngine(newBundle(t))

	s, err := script.Parse([]byte("paths:\n  - pattern: refund\n    answer: Done.\n"), script.FormatYAML)
	require.NoError(t, err)
	b, err := s.Build()
	require.NoError(t, err)
	engine.Swap(b)

	_, reply, err := engine.Reply(context.Background(), domain.NewState("s1"), "refund")
	require.NoError(t, err)
	assert.True(t, reply.Matched)
	assert.Equal(t, "Done.", reply.Messages[len(reply.Messages)-1].Text)
	assert.Same(t, b, engine.Bundle())
}
