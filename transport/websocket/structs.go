package websocket

import "encoding/json"

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// GamePayload - payload of the game:* actions.
type GamePayload struct {
	InstanceID string `json:"instance_id,omitempty"`
	GuessWord  string `json:"guess_word,omitempty"`
}

// WhiteboardPayload - payload of the whiteboard:* actions.
type WhiteboardPayload struct {
	Elements json.RawMessage `json:"elements,omitempty"`
	Pointer  json.RawMessage `json:"pointer,omitempty"`
	TargetID string          `json:"target_id,omitempty"`
}

// JoinResponse - reply to game:join carrying the active instance's ID.
type JoinResponse struct {
	Action     string `json:"action"`
	InstanceID string `json:"instance_id"`
}

// ErrorResponse - reply sent when a command fails.
type ErrorResponse struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}
