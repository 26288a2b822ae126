package toolloop

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/gemchat/gemchat/pkg/engine"
	"github.com/gemchat/gemchat/pkg/toolblocks"
	"github.com/gemchat/gemchat/pkg/tools"
	"github.com/gemchat/gemchat/pkg/turns"
)

// ErrMaxIterations is returned when the loop hits its iteration cap while the
// model is still requesting tools. The caller decides what to do with the
// partial turn; the loop itself fails closed.
var ErrMaxIterations = errors.New("max tool iterations reached")

// Loop drives the two-phase conversation cycle: ask the model, execute any
// requested tools, feed the results back, repeat until the model answers in
// plain text or the iteration cap trips.
type Loop struct {
	eng      engine.Engine
	registry tools.ToolRegistry
	loopCfg  LoopConfig
	toolCfg  tools.ToolConfig
	executor tools.ToolExecutor
}

type Option func(*Loop)

func New(opts ...Option) *Loop {
	l := &Loop{
		loopCfg: DefaultLoopConfig(),
		toolCfg: tools.DefaultToolConfig(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func WithEngine(eng engine.Engine) Option {
	return func(l *Loop) { l.eng = eng }
}

func WithRegistry(reg tools.ToolRegistry) Option {
	return func(l *Loop) { l.registry = reg }
}

func WithLoopConfig(cfg LoopConfig) Option {
	return func(l *Loop) { l.loopCfg = cfg }
}

func WithToolConfig(cfg tools.ToolConfig) Option {
	return func(l *Loop) { l.toolCfg = cfg }
}

func WithExecutor(exec tools.ToolExecutor) Option {
	return func(l *Loop) { l.executor = exec }
}

// RunLoop runs the tool calling workflow until no pending tool calls remain
// or the iteration cap is hit.
func (l *Loop) RunLoop(ctx context.Context, initialTurn *turns.Turn) (*turns.Turn, error) {
	if l == nil {
		return nil, errors.New("tool loop is nil")
	}
	if l.eng == nil {
		return nil, errors.New("tool loop engine is nil")
	}
	if l.registry == nil {
		return nil, errors.New("tool loop registry is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	t := initialTurn
	if t == nil {
		t = &turns.Turn{}
	}

	ctx = tools.WithRegistry(ctx, l.registry)

	maxIterations := l.loopCfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultLoopConfig().MaxIterations
	}

	for i := 0; i < maxIterations; i++ {
		log.Debug().Int("iteration", i+1).Msg("toolloop: engine inference step")

		updated, err := l.eng.RunInference(ctx, t)
		if err != nil {
			return nil, err
		}

		calls := toolblocks.ExtractPendingToolCalls(updated)
		if len(calls) == 0 {
			return updated, nil
		}

		log.Debug().Int("pending_tools", len(calls)).Msg("toolloop: executing tool calls")
		results := l.executeTools(ctx, calls)
		toolblocks.AppendToolResultsBlocks(updated, results)

		t = updated
	}

	log.Warn().Int("max_iterations", maxIterations).Msg("toolloop: maximum iterations reached")
	return t, errors.Wrapf(ErrMaxIterations, "after %d iterations", maxIterations)
}

func (l *Loop) executeTools(ctx context.Context, toolCalls []toolblocks.ToolCall) []toolblocks.ToolResult {
	if len(toolCalls) == 0 {
		return nil
	}

	executor := l.executor
	if executor == nil {
		executor = tools.NewDefaultToolExecutor(l.toolCfg)
	}

	execCalls := make([]tools.ToolCall, 0, len(toolCalls))
	for _, call := range toolCalls {
		argBytes, _ := json.Marshal(call.Arguments)
		execCalls = append(execCalls, tools.ToolCall{ID: call.ID, Name: call.Name, Arguments: json.RawMessage(argBytes)})
	}

	execResults := executor.ExecuteToolCalls(ctx, execCalls, l.registry)

	out := make([]toolblocks.ToolResult, len(toolCalls))
	for i, c := range toolCalls {
		if i >= len(execResults) || execResults[i] == nil {
			out[i] = toolblocks.ToolResult{ID: c.ID, Name: c.Name, Error: "no result returned"}
			continue
		}
		r := execResults[i]
		if r.Error != "" {
			out[i] = toolblocks.ToolResult{ID: c.ID, Name: c.Name, Error: r.Error}
			continue
		}
		var content string
		if b, err := json.Marshal(r.Result); err == nil {
			content = string(b)
		} else {
			content = fmt.Sprintf("%v", r.Result)
		}
		out[i] = toolblocks.ToolResult{ID: c.ID, Name: c.Name, Content: content}
	}
	return out
}
