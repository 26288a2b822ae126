package gemini

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	genai "google.golang.org/genai"

	"github.com/gemchat/gemchat/pkg/engine"
	"github.com/gemchat/gemchat/pkg/events"
	"github.com/gemchat/gemchat/pkg/tools"
	"github.com/gemchat/gemchat/pkg/turns"
)

// Engine implements engine.Engine for Google's Gemini API.
type Engine struct {
	settings *engine.Settings
	config   *engine.Config
}

// NewEngine creates a new Gemini inference engine with the given settings and options.
func NewEngine(settings *engine.Settings, options ...engine.Option) (*Engine, error) {
	if settings == nil {
		return nil, errors.New("settings are required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	cfg := engine.NewConfig()
	if err := engine.ApplyOptions(cfg, options...); err != nil {
		return nil, err
	}
	return &Engine{settings: settings, config: cfg}, nil
}

// RunInference sends the turn to Gemini and appends the response blocks.
// Tool declarations come from the registry on ctx; function calls in the
// response become tool_call blocks, in the order the model emitted them.
func (e *Engine) RunInference(ctx context.Context, t *turns.Turn) (*turns.Turn, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  e.settings.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}

	contents := buildContentsFromTurn(t)
	cfg := &genai.GenerateContentConfig{}
	if sys := systemText(t, e.settings.SystemPrompt); sys != "" {
		cfg.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}
	if e.settings.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(e.settings.Temperature))
	}

	registry, _ := tools.RegistryFrom(ctx)
	if registry != nil {
		if decls := declarationsFromRegistry(registry); len(decls) > 0 {
			cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
			log.Debug().Int("tool_count", len(decls)).Msg("added tool declarations to gemini request")
		}
	}

	startTime := time.Now()
	metadata := events.EventMetadataFromContext(ctx)
	metadata.ID = uuid.New()
	if t.ID != "" {
		metadata.TurnID = t.ID
	}
	metadata.Model = e.settings.Model
	e.publishEvent(ctx, events.NewStartEvent(metadata))

	log.Debug().Int("num_blocks", len(t.Blocks)).Str("model", e.settings.Model).Msg("gemini RunInference started")
	resp, err := client.Models.GenerateContent(ctx, e.settings.Model, contents, cfg)
	if err != nil {
		dm := time.Since(startTime).Milliseconds()
		metadata.DurationMs = &dm
		e.publishEvent(ctx, events.NewErrorEvent(metadata, err))
		return nil, errors.Wrap(err, "gemini generate content failed")
	}

	message := ""
	var pendingCalls []struct {
		id, name string
		args     map[string]any
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p.Text != "" {
				message += p.Text
			}
			if p.FunctionCall != nil {
				args := p.FunctionCall.Args
				if args == nil {
					args = map[string]any{}
				}
				// Gemini does not always assign call IDs; mint one so the
				// result block can be paired back to this request.
				id := p.FunctionCall.ID
				if id == "" {
					id = uuid.NewString()
				}
				pendingCalls = append(pendingCalls, struct {
					id, name string
					args     map[string]any
				}{id: id, name: p.FunctionCall.Name, args: args})

				inputBytes, _ := json.Marshal(args)
				e.publishEvent(ctx, events.NewToolCallEvent(metadata, events.ToolCall{
					ID: id, Name: p.FunctionCall.Name, Input: string(inputBytes),
				}))
			}
		}
	}

	if message != "" {
		turns.AppendBlock(t, turns.NewAssistantTextBlock(message))
	}
	for _, c := range pendingCalls {
		turns.AppendBlock(t, turns.NewToolCallBlock(c.id, c.name, c.args))
	}

	dm := time.Since(startTime).Milliseconds()
	metadata.DurationMs = &dm
	e.publishEvent(ctx, events.NewFinalEvent(metadata, message))

	log.Debug().
		Int("final_text_len", len(message)).
		Int("tool_call_count", len(pendingCalls)).
		Msg("gemini RunInference completed")
	return t, nil
}

// declarationsFromRegistry converts registered tools into Gemini function
// declarations, preserving registration order.
func declarationsFromRegistry(registry tools.ToolRegistry) []*genai.FunctionDeclaration {
	var decls []*genai.FunctionDeclaration
	for _, td := range registry.ListTools() {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        td.Name,
			Description: td.Description,
			Parameters:  convertSchema(td.Parameters),
		})
	}
	return decls
}

// systemText collects the system prompt for the request. System blocks in the
// turn take precedence over the configured default.
func systemText(t *turns.Turn, fallback string) string {
	if t != nil {
		for _, b := range t.Blocks {
			if b.Kind == turns.BlockKindSystem {
				if txt := turns.BlockText(b); txt != "" {
					return txt
				}
			}
		}
	}
	return fallback
}

// buildContentsFromTurn converts Turn blocks into Gemini contents. System
// blocks are excluded here; they travel as the system instruction instead.
func buildContentsFromTurn(t *turns.Turn) []*genai.Content {
	if t == nil || len(t.Blocks) == 0 {
		return nil
	}

	// tool_call id to name, for FunctionResponse pairing
	idToName := map[string]string{}
	for _, b := range t.Blocks {
		if b.Kind == turns.BlockKindToolCall {
			id, _ := b.Payload[turns.PayloadKeyID].(string)
			name, _ := b.Payload[turns.PayloadKeyName].(string)
			if id != "" && name != "" {
				idToName[id] = name
			}
		}
	}

	var contents []*genai.Content
	for _, b := range t.Blocks {
		switch b.Kind {
		case turns.BlockKindUser:
			contents = append(contents, genai.NewContentFromText(turns.BlockText(b), genai.RoleUser))

		case turns.BlockKindLLMText:
			contents = append(contents, genai.NewContentFromText(turns.BlockText(b), genai.RoleModel))

		case turns.BlockKindToolCall:
			name, _ := b.Payload[turns.PayloadKeyName].(string)
			args, _ := b.Payload[turns.PayloadKeyArgs].(map[string]any)
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: name, Args: args}}},
			})

		case turns.BlockKindToolUse:
			id, _ := b.Payload[turns.PayloadKeyID].(string)
			name := idToName[id]
			if name == "" {
				name = "result"
			}
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					Name:     name,
					Response: responseMap(b.Payload[turns.PayloadKeyResult]),
				}}},
			})
		}
	}
	return contents
}

// responseMap coerces a tool result into the object shape FunctionResponse
// requires. JSON strings are parsed; everything else is wrapped.
func responseMap(res any) map[string]any {
	switch rv := res.(type) {
	case map[string]any:
		return rv
	case string:
		var obj map[string]any
		if json.Unmarshal([]byte(rv), &obj) == nil {
			return obj
		}
		return map[string]any{"result": rv}
	default:
		bts, err := json.Marshal(rv)
		if err == nil {
			var obj map[string]any
			if json.Unmarshal(bts, &obj) == nil {
				return obj
			}
		}
		return map[string]any{"result": rv}
	}
}

// publishEvent publishes to all configured sinks and any sinks carried in ctx.
func (e *Engine) publishEvent(ctx context.Context, event events.Event) {
	for _, sink := range e.config.EventSinks {
		if err := sink.PublishEvent(event); err != nil {
			log.Warn().Err(err).Str("event_type", string(event.Type())).Msg("failed to publish event to sink")
		}
	}
	events.PublishEventToContext(ctx, event)
}

var _ engine.Engine = (*Engine)(nil)
