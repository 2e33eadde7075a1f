package domain

import "time"

// State is the snapshot of a single conversation.
type State struct {
	SessionID string `json:"session_id"`

	// Seen is set once the first-time welcome has been shown.
	Seen bool `json:"seen"`

	// LastTimestamp is when the last time break was written.
	LastTimestamp time.Time `json:"last_timestamp"`

	// Transcript holds every message exchanged so far.
	Transcript []Message `json:"transcript"`

	// Sealed carries the encrypted form of a state written through an
	// encrypting store. It is empty for plain states.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewState creates a clean state for a visitor that was never greeted.
func NewState(sessionID string) *State {
	return &State{
		SessionID:  sessionID,
		Transcript: []Message{},
	}
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Transcript = make([]Message, len(s.Transcript))
	copy(next.Transcript, s.Transcript)
	return &next
}

// Append adds messages to the transcript.
func (s *State) Append(msgs ...Message) {
	s.Transcript = append(s.Transcript, msgs...)
}
