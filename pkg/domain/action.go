package domain

import "time"

// ActionType defines the kind of scripted UI step.
type ActionType string

const (
	// ActionClick clicks the element matched by Selector.
	ActionClick ActionType = "click"
	// ActionInput types Text into the element matched by Selector.
	ActionInput ActionType = "input"
)

// Action is one step of a scripted UI replay.
type Action struct {
	Type     ActionType    `json:"type" yaml:"type"`
	Selector string        `json:"selector" yaml:"selector"`
	Text     string        `json:"text,omitempty" yaml:"text,omitempty"`
	Delay    time.Duration `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// Plan is an ordered sequence of actions replayed one after the other.
type Plan []Action

// Reply is the engine's answer to a single user input.
type Reply struct {
	// Messages are the entries appended to the transcript by this turn.
	Messages []Message `json:"messages"`

	// Plan holds the UI actions attached to the matched answer, if any.
	Plan Plan `json:"plan,omitempty"`

	// Matched reports whether the input reached a complete answer.
	Matched bool `json:"matched"`

	// Keys are the patterns matched on the way down the tree.
	Keys []string `json:"keys,omitempty"`
}
