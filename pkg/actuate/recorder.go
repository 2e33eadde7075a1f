package actuate

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/arcty/pkg/domain"
)

// Step is one call received by a Recorder.
type Step struct {
	Type     domain.ActionType
	Selector string
	Text     string
}

// Recorder is a Dispatcher that remembers every call. When Out is set each
// call is also echoed there, which the CLI uses for dry runs.
type Recorder struct {
	Out io.Writer

	mu    sync.Mutex
	steps []Step
}

// Click records a click.
func (r *Recorder) Click(ctx context.Context, selector string) error {
	return r.record(Step{Type: domain.ActionClick, Selector: selector})
}

// Type records typed text.
func (r *Recorder) Type(ctx context.Context, selector, text string) error {
	return r.record(Step{Type: domain.ActionInput, Selector: selector, Text: text})
}

func (r *Recorder) record(s Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, s)
	if r.Out == nil {
		return nil
	}
	line := fmt.Sprintf("%s %s", s.Type, s.Selector)
	if s.Text != "" {
		line += fmt.Sprintf(" %q", s.Text)
	}
	_, err := fmt.Fprintln(r.Out, line)
	return err
}

// Steps returns a copy of the recorded calls.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step(nil), r.steps...)
}

// Typed joins everything typed into selector.
func (r *Recorder) Typed(selector string) string {
	var b strings.Builder
	for _, s := range r.Steps() {
		if s.Type == domain.ActionInput && s.Selector == selector {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
