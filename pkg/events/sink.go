package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

// EventSink receives events emitted by the engine, executor and session.
// Sinks are a pure observation channel: nothing they do feeds back into the
// orchestration loop.
type EventSink interface {
	// PublishEvent publishes an event to the sink.
	// Returns an error if the event could not be published.
	PublishEvent(event Event) error
}

// NullSink is a no-op EventSink implementation that discards all events.
// Useful for testing or when event publishing is not desired.
type NullSink struct{}

func NewNullSink() *NullSink { return &NullSink{} }

func (n *NullSink) PublishEvent(Event) error { return nil }

var _ EventSink = (*NullSink)(nil)

// ctxKey is an unexported type for keys defined in this package.
type ctxKey int

const (
	ctxKeyEventSinks ctxKey = iota
	ctxKeyEventMetadata
)

// WithEventSinks attaches one or more EventSink instances to the context.
// Downstream code can retrieve the sinks and publish events without requiring
// access to engine configuration.
func WithEventSinks(ctx context.Context, sinks ...EventSink) context.Context {
	if len(sinks) == 0 {
		return ctx
	}
	existing := GetEventSinks(ctx)
	combined := append([]EventSink{}, existing...)
	combined = append(combined, sinks...)
	return context.WithValue(ctx, ctxKeyEventSinks, combined)
}

// GetEventSinks returns the list of EventSinks attached to the context.
func GetEventSinks(ctx context.Context) []EventSink {
	if v := ctx.Value(ctxKeyEventSinks); v != nil {
		if sinks, ok := v.([]EventSink); ok {
			return sinks
		}
	}
	return nil
}

// WithEventMetadata attaches base metadata (session and turn identity) to the
// context. Publishers deeper in the call chain start from this base so every
// event of one request correlates on the same IDs.
func WithEventMetadata(ctx context.Context, metadata EventMetadata) context.Context {
	return context.WithValue(ctx, ctxKeyEventMetadata, metadata)
}

// EventMetadataFromContext returns the base metadata attached to the context,
// or a zero value when none was attached.
func EventMetadataFromContext(ctx context.Context) EventMetadata {
	if v := ctx.Value(ctxKeyEventMetadata); v != nil {
		if metadata, ok := v.(EventMetadata); ok {
			return metadata
		}
	}
	return EventMetadata{}
}

// PublishEventToContext publishes the provided event to all EventSinks stored
// in the context. If no sinks are present, this is a no-op.
func PublishEventToContext(ctx context.Context, event Event) {
	sinks := GetEventSinks(ctx)
	if len(sinks) == 0 {
		return
	}
	for _, sink := range sinks {
		// Best-effort: ignore individual sink errors to avoid disrupting the flow
		if err := sink.PublishEvent(event); err != nil {
			log.Warn().Err(err).Str("event_type", string(event.Type())).Msg("failed to publish event to sink")
		}
	}
}
