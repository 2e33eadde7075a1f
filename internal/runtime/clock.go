package runtime

import (
	"time"

	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/script"
)

const (
	// TimeBreakInterval is the quiet period after which a new time break is written.
	TimeBreakInterval = 5 * time.Minute

	// TimeBreakLayout renders a time break, e.g. "Tue 3:04 pm".
	TimeBreakLayout = "Mon 3:04 pm"
)

// Bucket picks the greeting for the hour of t.
func Bucket(t time.Time) domain.GreetingKind {
	h := t.Hour()
	switch {
	case h <= 5 || h >= 22:
		return domain.GreetingAfterHours
	case h <= 12:
		return domain.GreetingMorning
	case h <= 17:
		return domain.GreetingAfternoon
	default:
		return domain.GreetingEvening
	}
}

func greeting(g script.Greetings, kind domain.GreetingKind) string {
	switch kind {
	case domain.GreetingAfterHours:
		return g.AfterHours
	case domain.GreetingMorning:
		return g.Morning
	case domain.GreetingAfternoon:
		return g.Afternoon
	default:
		return g.Evening
	}
}

// timeBreak returns a time break message when one is due and records it on
// state. The first break of a session is always due.
func (e *Engine) timeBreak(state *domain.State, now time.Time) (domain.Message, bool) {
	if !e.timeBreaks {
		return domain.Message{}, false
	}
	if !state.LastTimestamp.IsZero() && now.Before(state.LastTimestamp.Add(TimeBreakInterval)) {
		return domain.Message{}, false
	}
	state.LastTimestamp = now
	return domain.Message{
		Kind: domain.MessageTimeBreak,
		Text: now.Format(TimeBreakLayout),
		At:   now,
	}, true
}
