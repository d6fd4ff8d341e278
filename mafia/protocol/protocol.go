// Package protocol defines the JSON envelopes exchanged over the websocket.
package protocol

import (
	"encoding/json"
	"errors"
)

// Type names an inbound or outbound message.
type Type string

// Inbound message types.
const (
	CreateRoom         Type = "CREATE_ROOM"
	JoinRoom           Type = "JOIN_ROOM"
	Reconnect          Type = "RECONNECT"
	SetName            Type = "SET_NAME"
	UpdateSettings     Type = "UPDATE_SETTINGS"
	UpdateRoleCounts   Type = "UPDATE_ROLE_COUNTS"
	StartGame          Type = "START_GAME"
	SetPhase           Type = "SET_PHASE"
	StartTimer         Type = "START_TIMER"
	PauseGame          Type = "PAUSE_GAME"
	PrivilegedChatSend Type = "PRIVILEGED_CHAT_SEND"
	Ping               Type = "PING"
)

// Outbound message types.
const (
	Hello                 Type = "hello"
	RoomCreated           Type = "ROOM_CREATED"
	Joined                Type = "JOINED"
	Reconnected           Type = "RECONNECTED"
	RoomState             Type = "ROOM_STATE"
	PeerJoined            Type = "PEER_JOINED"
	PeerLeft              Type = "PEER_LEFT"
	PrivateRole           Type = "PRIVATE_ROLE"
	PrivilegedChat        Type = "PRIVILEGED_CHAT"
	PrivilegedChatHistory Type = "PRIVILEGED_CHAT_HISTORY"
	Timer                 Type = "TIMER"
	Paused                Type = "PAUSED"
	Error                 Type = "ERROR"
	Pong                  Type = "PONG"
)

var ErrMalformed = errors.New("malformed envelope")

// Envelope is the frame received from websocket clients.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is pushed to clients; Payload is marshalled as-is.
type Event struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload,omitempty"`
}

// Decode parses a raw text frame into an envelope.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, ErrMalformed
	}
	if env.Type == "" {
		return Envelope{}, ErrMalformed
	}
	return env, nil
}

// Bind unmarshals the payload into v. An absent payload leaves v untouched.
func (e Envelope) Bind(v any) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return ErrMalformed
	}
	return nil
}
