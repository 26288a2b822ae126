package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type EventType string

const (
	// EventTypeStart marks the beginning of a model invocation.
	EventTypeStart EventType = "start"
	// EventTypeFinal carries the terminal text answer of one user request.
	EventTypeFinal EventType = "final"

	// EventTypeUserMessage announces a user message appended to history.
	EventTypeUserMessage EventType = "user-message"

	// Model requested a tool call (received from the provider response).
	EventTypeToolCall EventType = "tool-call"

	// Execution-phase events (we are actually executing tools locally).
	EventTypeToolCallExecute         EventType = "tool-call-execute"
	EventTypeToolCallExecutionResult EventType = "tool-call-execution-result"

	EventTypeError EventType = "error"
	EventTypeInfo  EventType = "info"
)

// EventMetadata carries identity and inference context shared by all events.
type EventMetadata struct {
	ID        uuid.UUID `json:"message_id" yaml:"message_id"`
	SessionID string    `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	TurnID    string    `json:"turn_id,omitempty" yaml:"turn_id,omitempty"`
	Model     string    `json:"model,omitempty" yaml:"model,omitempty"`
	// DurationMs is set on final/error events for the whole model invocation.
	DurationMs *int64         `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	Extra      map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

func (em EventMetadata) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("message_id", em.ID.String())
	if em.SessionID != "" {
		ev.Str("session_id", em.SessionID)
	}
	if em.Model != "" {
		ev.Str("model", em.Model)
	}
}

// ToolCall mirrors a model-requested tool invocation in event payloads.
type ToolCall struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Input string `json:"input" yaml:"input"`
}

// ToolResult mirrors the outcome of one tool execution in event payloads.
type ToolResult struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Result string `json:"result" yaml:"result"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

type Event interface {
	Type() EventType
	Metadata() EventMetadata
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta,omitempty"`
}

func (e *EventImpl) Type() EventType { return e.Type_ }

func (e *EventImpl) Metadata() EventMetadata { return e.Metadata_ }

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))
	ev.Object("meta", e.Metadata_)
}

var _ Event = &EventImpl{}

type EventStart struct {
	EventImpl
}

func NewStartEvent(metadata EventMetadata) *EventStart {
	return &EventStart{EventImpl: EventImpl{Type_: EventTypeStart, Metadata_: metadata}}
}

type EventUserMessage struct {
	EventImpl
	Text string `json:"text"`
}

func NewUserMessageEvent(metadata EventMetadata, text string) *EventUserMessage {
	return &EventUserMessage{
		EventImpl: EventImpl{Type_: EventTypeUserMessage, Metadata_: metadata},
		Text:      text,
	}
}

type EventFinal struct {
	EventImpl
	Text string `json:"text"`
}

func NewFinalEvent(metadata EventMetadata, text string) *EventFinal {
	return &EventFinal{
		EventImpl: EventImpl{Type_: EventTypeFinal, Metadata_: metadata},
		Text:      text,
	}
}

type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewErrorEvent(metadata EventMetadata, err error) *EventError {
	e := &EventError{EventImpl: EventImpl{Type_: EventTypeError, Metadata_: metadata}}
	if err != nil {
		e.ErrorString = err.Error()
	}
	return e
}

type EventToolCall struct {
	EventImpl
	ToolCall ToolCall `json:"tool_call"`
}

func NewToolCallEvent(metadata EventMetadata, toolCall ToolCall) *EventToolCall {
	return &EventToolCall{
		EventImpl: EventImpl{Type_: EventTypeToolCall, Metadata_: metadata},
		ToolCall:  toolCall,
	}
}

type EventToolCallExecute struct {
	EventImpl
	ToolCall ToolCall `json:"tool_call"`
}

func NewToolCallExecuteEvent(metadata EventMetadata, toolCall ToolCall) *EventToolCallExecute {
	return &EventToolCallExecute{
		EventImpl: EventImpl{Type_: EventTypeToolCallExecute, Metadata_: metadata},
		ToolCall:  toolCall,
	}
}

type EventToolCallExecutionResult struct {
	EventImpl
	ToolResult ToolResult `json:"tool_result"`
}

func NewToolCallExecutionResultEvent(metadata EventMetadata, toolResult ToolResult) *EventToolCallExecutionResult {
	return &EventToolCallExecutionResult{
		EventImpl:  EventImpl{Type_: EventTypeToolCallExecutionResult, Metadata_: metadata},
		ToolResult: toolResult,
	}
}

type EventInfo struct {
	EventImpl
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func NewInfoEvent(metadata EventMetadata, message string, data map[string]any) *EventInfo {
	return &EventInfo{
		EventImpl: EventImpl{Type_: EventTypeInfo, Metadata_: metadata},
		Message:   message,
		Data:      data,
	}
}

// NewEventFromJson decodes a serialized event back into its concrete type.
// This is the inverse of the JSON encoding done by WatermillSink.
func NewEventFromJson(b []byte) (Event, error) {
	var peek EventImpl
	if err := json.Unmarshal(b, &peek); err != nil {
		return nil, errors.Wrap(err, "failed to peek event type")
	}

	var (
		ret Event
		err error
	)
	switch peek.Type_ {
	case EventTypeStart:
		ret, err = decodeEvent[EventStart](b)
	case EventTypeUserMessage:
		ret, err = decodeEvent[EventUserMessage](b)
	case EventTypeFinal:
		ret, err = decodeEvent[EventFinal](b)
	case EventTypeError:
		ret, err = decodeEvent[EventError](b)
	case EventTypeToolCall:
		ret, err = decodeEvent[EventToolCall](b)
	case EventTypeToolCallExecute:
		ret, err = decodeEvent[EventToolCallExecute](b)
	case EventTypeToolCallExecutionResult:
		ret, err = decodeEvent[EventToolCallExecutionResult](b)
	case EventTypeInfo:
		ret, err = decodeEvent[EventInfo](b)
	default:
		return nil, errors.Errorf("unknown event type: %s", peek.Type_)
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func decodeEvent[T any, PT interface {
	*T
	Event
}](b []byte) (Event, error) {
	ret := PT(new(T))
	if err := json.Unmarshal(b, ret); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal %T", ret)
	}
	return ret, nil
}
