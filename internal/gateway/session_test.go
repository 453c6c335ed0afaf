package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkandtalk/walktalk/internal/app/models/dto"
)

func TestDispatchRejectsUnknownScreen(t *testing.T) {
	s := &Session{}
	err := s.Dispatch(dto.IntentFrame{Screen: "settings", Intent: "open"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown screen")
}

func TestDispatchChatWithoutOpenConversation(t *testing.T) {
	s := &Session{}
	payload, _ := json.Marshal(map[string]string{"content": "hi", "tempId": "t-1"})
	err := s.Dispatch(dto.IntentFrame{Screen: ScreenChat, Intent: "send", Payload: payload})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no open chat")
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	_, err := decode[idPayload](dto.IntentFrame{
		Screen:  ScreenFeed,
		Intent:  "joinEvent",
		Payload: json.RawMessage(`{"id":`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payload")
}

func TestEffectEnvelopeCarriesVariantName(t *testing.T) {
	type EventCreated struct {
		EventID string `json:"eventId"`
	}
	data, err := json.Marshal(envelope(EventCreated{EventID: "e-1"}))
	require.NoError(t, err)

	var decoded struct {
		Type string `json:"type"`
		Data struct {
			EventID string `json:"eventId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "EventCreated", decoded.Type)
	assert.Equal(t, "e-1", decoded.Data.EventID)
}
