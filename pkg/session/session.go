package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/gemchat/gemchat/pkg/events"
	"github.com/gemchat/gemchat/pkg/toolloop"
	"github.com/gemchat/gemchat/pkg/turns"
)

var (
	ErrSessionNil   = errors.New("session is nil")
	ErrSessionBusy  = errors.New("session already has an active request")
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoLoop       = errors.New("session has no loop")
)

// Session represents a long-lived, multi-turn chat interaction.
//
// It owns:
// - a stable SessionID
// - the committed conversation history (append-only)
// - the invariant that only one request is in flight at a time
//
// History is committed only when a request fully succeeds. A failed request
// leaves the history exactly as it was before the request started.
type Session struct {
	SessionID string

	loop         *toolloop.Loop
	systemPrompt string

	mu      sync.Mutex
	busy    bool
	history *turns.Turn
}

type Option func(*Session)

// WithSystemPrompt seeds the conversation with a system directive.
func WithSystemPrompt(prompt string) Option {
	return func(s *Session) { s.systemPrompt = prompt }
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.SessionID = id
		}
	}
}

// NewSession constructs a Session driving the given loop.
func NewSession(loop *toolloop.Loop, opts ...Option) *Session {
	s := &Session{
		SessionID: uuid.NewString(),
		loop:      loop,
		history:   &turns.Turn{ID: uuid.NewString()},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.systemPrompt != "" {
		turns.AppendBlock(s.history, turns.NewSystemTextBlock(s.systemPrompt))
	}
	return s
}

// IsBusy reports whether the session currently has an active request.
func (s *Session) IsBusy() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Respond runs one full request: append the user message to a working copy of
// the history, drive the tool loop to completion, and commit the result. The
// returned string is the model's final text answer.
//
// On any failure the history stays at its pre-request state and the error is
// returned to the caller.
func (s *Session) Respond(ctx context.Context, userMessage string) (string, error) {
	if s == nil {
		return "", ErrSessionNil
	}
	if s.loop == nil {
		return "", ErrNoLoop
	}
	if userMessage == "" {
		return "", ErrEmptyMessage
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", ErrSessionBusy
	}
	s.busy = true
	working := s.history.Clone()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	turns.AppendBlock(working, turns.NewUserTextBlock(userMessage))

	// Base metadata rides the context so engine and executor events of this
	// request all carry the same session and turn identity.
	base := events.EventMetadata{SessionID: s.SessionID, TurnID: working.ID}
	ctx = events.WithEventMetadata(ctx, base)

	userMeta := base
	userMeta.ID = uuid.New()
	events.PublishEventToContext(ctx, events.NewUserMessageEvent(userMeta, userMessage))

	log.Debug().Str("session_id", s.SessionID).Int("history_blocks", len(working.Blocks)).Msg("session request started")

	out, err := s.loop.RunLoop(ctx, working)
	if err != nil {
		errMeta := base
		errMeta.ID = uuid.New()
		events.PublishEventToContext(ctx, events.NewErrorEvent(errMeta, err))
		log.Warn().Err(err).Str("session_id", s.SessionID).Msg("session request failed, history unchanged")
		return "", err
	}

	s.mu.Lock()
	s.history = out
	s.mu.Unlock()

	text, ok := turns.LastAssistantText(out)
	if !ok {
		// An empty model answer still commits; the model simply said nothing.
		log.Debug().Str("session_id", s.SessionID).Msg("model produced no final text")
	}
	return text, nil
}

// History returns a snapshot of the committed conversation history.
func (s *Session) History() *turns.Turn {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Clone()
}

// Reset discards the conversation history, keeping the system prompt.
func (s *Session) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = &turns.Turn{ID: uuid.NewString()}
	if s.systemPrompt != "" {
		turns.AppendBlock(s.history, turns.NewSystemTextBlock(s.systemPrompt))
	}
}
