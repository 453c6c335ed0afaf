package dto

import "encoding/json"

// Frames exchanged over the screen-session WebSocket. The client sends
// IntentFrame; the server streams StateFrame and EffectFrame.

// IntentFrame is an inbound intent addressed to one screen's view-model
type IntentFrame struct {
	Screen  string          `json:"screen"`
	Intent  string          `json:"intent"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StateFrame is an outbound state snapshot for one screen
type StateFrame struct {
	Kind   string      `json:"kind"` // always "state"
	Screen string      `json:"screen"`
	State  interface{} `json:"state"`
}

// EffectFrame is an outbound one-shot side effect for one screen
type EffectFrame struct {
	Kind   string      `json:"kind"` // always "effect"
	Screen string      `json:"screen"`
	Effect interface{} `json:"effect"`
}
