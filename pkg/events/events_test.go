package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewEventFromJson_RoundTripsConcreteTypes(t *testing.T) {
	meta := EventMetadata{ID: uuid.New(), SessionID: "s-1", Model: "gemini-2.0-flash"}

	cases := []struct {
		name  string
		event Event
	}{
		{"final", NewFinalEvent(meta, "all done")},
		{"user", NewUserMessageEvent(meta, "hello")},
		{"tool-call", NewToolCallEvent(meta, ToolCall{ID: "c1", Name: "getWeather", Input: `{"location":"Tokyo, JP"}`})},
		{"tool-execute", NewToolCallExecuteEvent(meta, ToolCall{ID: "c1", Name: "getWeather"})},
		{"tool-result", NewToolCallExecutionResultEvent(meta, ToolResult{ID: "c1", Name: "getWeather", Result: `{"temperature":"23° F"}`})},
		{"error", NewErrorEvent(meta, errTest)},
		{"info", NewInfoEvent(meta, "note", map[string]any{"k": "v"})},
		{"start", NewStartEvent(meta)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.event)
			require.NoError(t, err)

			decoded, err := NewEventFromJson(b)
			require.NoError(t, err)
			require.Equal(t, tc.event.Type(), decoded.Type())
			require.Equal(t, meta.SessionID, decoded.Metadata().SessionID)
		})
	}
}

func TestNewEventFromJson_RejectsUnknownType(t *testing.T) {
	_, err := NewEventFromJson([]byte(`{"type":"no-such-event"}`))
	require.Error(t, err)
}

var errTest = errorString("model call failed")

type errorString string

func (e errorString) Error() string { return string(e) }
