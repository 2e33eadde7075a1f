package domain

import "time"

// MessageKind tells the host how to present a message.
type MessageKind string

const (
	MessageBot       MessageKind = "bot"
	MessageUser      MessageKind = "user"
	MessageTimeBreak MessageKind = "time_break"
)

// Message is a single entry of the conversation transcript.
type Message struct {
	Kind MessageKind `json:"kind"`
	Text string      `json:"text"`
	At   time.Time   `json:"at"`
}

// BotMessage is shorthand for a message written by the assistant.
func BotMessage(text string, at time.Time) Message {
	return Message{Kind: MessageBot, Text: text, At: at}
}

// UserMessage is shorthand for a message typed by the visitor.
func UserMessage(text string, at time.Time) Message {
	return Message{Kind: MessageUser, Text: text, At: at}
}
