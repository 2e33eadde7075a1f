package actuate_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/arcty/pkg/actuate"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestScheduler_Run(t *testing.T) {
	rec := &actuate.Recorder{}
	s := actuate.NewScheduler(rec, actuate.WithKeystrokeRate(rate.Inf))

	plan := domain.Plan{
		{Type: domain.ActionClick, Selector: "#menu"},
		{Type: domain.ActionInput, Selector: "#search", Text: "pricing"},
		{Type: domain.ActionClick, Selector: "#go"},
	}
	require.NoError(t, s.Run(context.Background(), plan))

	assert.Equal(t, []actuate.Step{
		{Type: domain.ActionClick, Selector: "#menu"},
		{Type: domain.ActionInput, Selector: "#search", Text: "pricing"},
		{Type: domain.ActionClick, Selector: "#go"},
	}, rec.Steps())
}

func TestScheduler_Keystrokes(t *testing.T) {
	rec := &actuate.Recorder{}
	s := actuate.NewScheduler(rec, actuate.WithKeystrokeRate(200))

	start := time.Now()
	err := s.Run(context.Background(), domain.Plan{{Type: domain.ActionInput, Selector: "#q", Text: "héllo"}})
	require.NoError(t, err)

	// One call per rune, the first one free.
	assert.Len(t, rec.Steps(), 5)
	assert.Equal(t, "héllo", rec.Typed("#q"))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestScheduler_Delay(t *testing.T) {
	rec := &actuate.Recorder{}
	s := actuate.NewScheduler(rec)

	start := time.Now()
	require.NoError(t, s.Run(context.Background(), domain.Plan{
		{Type: domain.ActionClick, Selector: "#a", Delay: 30 * time.Millisecond},
	}))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestScheduler_Cancel(t *testing.T) {
	rec := &actuate.Recorder{}
	s := actuate.NewScheduler(rec)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Run(ctx, domain.Plan{
		{Type: domain.ActionClick, Selector: "#a"},
		{Type: domain.ActionClick, Selector: "#b", Delay: time.Minute},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var stepErr *actuate.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.Index)
	assert.Len(t, rec.Steps(), 1)
}

// failingDispatcher rejects every click.
type failingDispatcher struct{ actuate.Recorder }

var errNoElement = errors.New("no element")

func (f *failingDispatcher) Click(ctx context.Context, selector string) error {
	return errNoElement
}

func TestScheduler_Errors(t *testing.T) {
	s := actuate.NewScheduler(&failingDispatcher{}, actuate.WithKeystrokeRate(rate.Inf))

	err := s.Run(context.Background(), domain.Plan{
		{Type: domain.ActionInput, Selector: "#q", Text: "x"},
		{Type: domain.ActionClick, Selector: "#missing"},
	})
	assert.ErrorIs(t, err, errNoElement)
	assert.Contains(t, err.Error(), "step 1 (click #missing)")

	err = s.Run(context.Background(), domain.Plan{{Type: "hover", Selector: "#q"}})
	assert.ErrorIs(t, err, actuate.ErrUnknownAction)
}

func TestRecorder_Echo(t *testing.T) {
	var out bytes.Buffer
	rec := &actuate.Recorder{Out: &out}
	s := actuate.NewScheduler(rec, actuate.WithKeystrokeRate(rate.Inf))

	require.NoError(t, s.Run(context.Background(), domain.Plan{
		{Type: domain.ActionClick, Selector: "#menu"},
		{Type: domain.ActionInput, Selector: "#q", Text: "refund"},
	}))
	assert.Equal(t, "click #menu\ninput #q \"refund\"\n", out.String())
}
