package domain

import (
	"context"
	"time"
)

// GreetingKind identifies which welcome text was used.
type GreetingKind string

const (
	GreetingFirstVisit GreetingKind = "first_visit"
	GreetingAfterHours GreetingKind = "after_hours"
	GreetingMorning    GreetingKind = "morning"
	GreetingAfternoon  GreetingKind = "afternoon"
	GreetingEvening    GreetingKind = "evening"
)

// GreetingEvent is emitted each time a session is welcomed.
type GreetingEvent struct {
	Timestamp time.Time    `json:"timestamp"`
	SessionID string       `json:"session_id"`
	Kind      GreetingKind `json:"kind"`
}

// MatchEvent is emitted after each user input is evaluated.
type MatchEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Input     string    `json:"input"`
	Keys      []string  `json:"keys,omitempty"`
	Answered  bool      `json:"answered"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnGreeting func(context.Context, *GreetingEvent)
	OnMatch    func(context.Context, *MatchEvent)
	OnNoMatch  func(context.Context, *MatchEvent)
}
