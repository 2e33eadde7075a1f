package script

import (
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/arcty/pkg/domain"
)

// Script is the authored content of an assistant.
type Script struct {
	Name      string     `mapstructure:"name" json:"name"`
	Welcome   string     `mapstructure:"welcome" json:"welcome"`
	Greetings Greetings  `mapstructure:"greetings" json:"greetings"`
	Prompts   []string   `mapstructure:"prompts" json:"prompts"`
	Fallback  string     `mapstructure:"fallback" json:"fallback"`
	Paths     []PathSpec `mapstructure:"paths" json:"paths"`
}

// Greetings are the time-aware welcomes shown to returning visitors.
type Greetings struct {
	AfterHours string `mapstructure:"after_hours" json:"after_hours"`
	Morning    string `mapstructure:"morning" json:"morning"`
	Afternoon  string `mapstructure:"afternoon" json:"afternoon"`
	Evening    string `mapstructure:"evening" json:"evening"`
}

// PathSpec is one authored entry of the decision tree.
// An entry with nested Paths is a branch; otherwise it is an answer, and a
// missing Answer marks it as not written yet.
type PathSpec struct {
	Pattern string       `mapstructure:"pattern" json:"pattern"`
	Answer  *string      `mapstructure:"answer" json:"answer,omitempty"`
	Actions []ActionSpec `mapstructure:"actions" json:"actions,omitempty"`
	Paths   []PathSpec   `mapstructure:"paths" json:"paths,omitempty"`
}

// ActionSpec is an authored UI step.
// Type is "click" or "input"; the legacy numeric form 1 means click and any
// other number means input.
type ActionSpec struct {
	Type     string        `mapstructure:"type" json:"type"`
	Selector string        `mapstructure:"selector" json:"selector"`
	Text     string        `mapstructure:"text" json:"text,omitempty"`
	Delay    time.Duration `mapstructure:"delay" json:"delay,omitempty"`
}

// Action converts the spec to its domain form.
func (a ActionSpec) Action() domain.Action {
	return domain.Action{
		Type:     actionType(a.Type),
		Selector: a.Selector,
		Text:     a.Text,
		Delay:    a.Delay,
	}
}

func actionType(raw string) domain.ActionType {
	clean := strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(clean); err == nil {
		if n == 1 {
			return domain.ActionClick
		}
		return domain.ActionInput
	}
	if clean == string(domain.ActionClick) {
		return domain.ActionClick
	}
	return domain.ActionInput
}

// Stock texts used when a script leaves them out.
const (
	DefaultWelcome  = "Hi, I am Arcty and I will be your digital assistant for the day"
	DefaultFallback = "Sorry, I did not quite get that. Could you rephrase it?"
)

// DefaultGreetings are the stock time-aware welcomes.
var DefaultGreetings = Greetings{
	AfterHours: "Welcome, I am Arcty and I will be your digital assistant for the day",
	Morning:    "Good morning and welcome to our website, my name is Arcty and I will be your digital assistant",
	Afternoon:  "Good afternoon and thank you for visiting our website, my name is Arcty and I will be your assistant for the day",
	Evening:    "Good evening, I am Arcty and I am more than happy to help you with anything you need",
}

// DefaultPrompts are the stock follow-up questions.
var DefaultPrompts = []string{
	"Is there anything specific you would like help with?",
	"What may I help you with?",
	"Can I do anything for you?",
	"Do you have any question in mind?",
	"Would you like me to help you with something?",
}

// ApplyDefaults fills every empty text with its stock value.
func (s *Script) ApplyDefaults() {
	if s.Welcome == "" {
		s.Welcome = DefaultWelcome
	}
	if s.Fallback == "" {
		s.Fallback = DefaultFallback
	}
	if s.Greetings.AfterHours == "" {
		s.Greetings.AfterHours = DefaultGreetings.AfterHours
	}
	if s.Greetings.Morning == "" {
		s.Greetings.Morning = DefaultGreetings.Morning
	}
	if s.Greetings.Afternoon == "" {
		s.Greetings.Afternoon = DefaultGreetings.Afternoon
	}
	if s.Greetings.Evening == "" {
		s.Greetings.Evening = DefaultGreetings.Evening
	}
	if len(s.Prompts) == 0 {
		s.Prompts = append([]string(nil), DefaultPrompts...)
	}
}
