package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages on the state feed
type MessageType string

const (
	MessageTypeGameState MessageType = "gameState"
	MessageTypeGetState  MessageType = "getState"
	MessageTypeClosed    MessageType = "closed"
	MessageTypeError     MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message of the given type.
func NewMessage(t MessageType, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

func NewErrorMessage(errorMsg string) Message {
	msg, _ := NewMessage(MessageTypeError, ErrorPayload{Error: errorMsg})
	return msg
}
