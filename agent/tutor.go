// Package agent implements the tutoring conversation loop: it drives a
// language model with the tutor instructions and the session's content
// tools, executes the tool calls the model requests, and voices final
// replies through the session's speaker. Exactly one reply is generated at
// a time per tutor; concurrent Respond calls serialize.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hupe1980/tutormesh/logging"
	"github.com/hupe1980/tutormesh/model"
	"github.com/hupe1980/tutormesh/session"
	"github.com/hupe1980/tutormesh/tool"
)

// Options configures a Tutor.
type Options struct {
	// Instructions overrides the default tutoring persona.
	Instructions string
	// MaxToolRounds bounds tool-call/response cycles within one reply.
	MaxToolRounds int
	// Logger (defaults to the session's logger)
	Logger logging.Logger
}

// Tutor owns one side of the conversation: it holds the dialogue history,
// the model and the tools bound to the session's content store.
type Tutor struct {
	mu            sync.Mutex
	model         model.Model
	session       *session.Session
	tools         map[string]tool.Tool
	defs          []model.ToolDefinition
	instructions  string
	maxToolRounds int
	logger        logging.Logger
	history       []model.Message
}

// New creates a tutor for a session with the content tools registered.
func New(m model.Model, sess *session.Session, optFns ...func(o *Options)) *Tutor {
	opts := Options{
		Instructions:  DefaultInstructions,
		MaxToolRounds: 8,
		Logger:        sess.Logger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	tools := map[string]tool.Tool{}
	var defs []model.ToolDefinition
	for _, tl := range tool.TutorTools(sess) {
		tools[tl.Name()] = tl
		defs = append(defs, model.ToolDefinition{
			Name:        tl.Name(),
			Description: tl.Description(),
			Parameters:  tl.Parameters(),
		})
	}

	return &Tutor{
		model:         m,
		session:       sess,
		tools:         tools,
		defs:          defs,
		instructions:  opts.Instructions,
		maxToolRounds: opts.MaxToolRounds,
		logger:        opts.Logger,
	}
}

// Greet produces and speaks the opening line of the session.
func (t *Tutor) Greet(ctx context.Context) (string, error) {
	return t.Respond(ctx, greetingPrompt)
}

// Respond adds the user's input to the history, lets the model reply,
// executing any tool calls it requests, and speaks the final text. The
// returned string is the spoken reply.
func (t *Tutor) Respond(ctx context.Context, userInput string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = append(t.history, model.Message{Role: "user", Text: userInput})

	for round := 0; round <= t.maxToolRounds; round++ {
		resp, err := t.model.Generate(ctx, model.Request{
			Instructions: t.instructions,
			Messages:     t.history,
			Tools:        t.defs,
		})
		if err != nil {
			return "", fmt.Errorf("generate reply: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			t.history = append(t.history, model.Message{Role: "assistant", Text: resp.Text})
			if err := t.session.Speaker().Say(ctx, resp.Text); err != nil {
				t.logger.Warn("agent.say_failed", "error", err.Error())
			}
			return resp.Text, nil
		}

		t.history = append(t.history, model.Message{
			Role:      "assistant",
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		t.history = append(t.history, model.Message{
			Role:        "tool",
			ToolResults: t.executeToolCalls(ctx, resp.ToolCalls),
		})
	}
	return "", fmt.Errorf("tool round limit of %d exceeded", t.maxToolRounds)
}

// executeToolCalls runs each requested call and collects results. A failed
// call is reported back to the model as an error string rather than aborting
// the reply.
func (t *Tutor) executeToolCalls(ctx context.Context, calls []model.ToolCall) []model.ToolResult {
	results := make([]model.ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, model.ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Content: t.executeToolCall(ctx, call),
		})
	}
	return results
}

func (t *Tutor) executeToolCall(ctx context.Context, call model.ToolCall) string {
	tl, ok := t.tools[call.Name]
	if !ok {
		t.logger.Error("agent.tool.unknown", "tool", call.Name)
		return fmt.Sprintf("error: unknown tool %q", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			t.logger.Error("agent.tool.bad_arguments", "tool", call.Name, "error", err.Error())
			return fmt.Sprintf("error: invalid arguments: %v", err)
		}
	}

	result, err := tl.Call(tool.NewContext(ctx, call.ID, t.logger), args)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	if s, ok := result.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", result)
}

// History returns a copy of the conversation so far.
func (t *Tutor) History() []model.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Message, len(t.history))
	copy(out, t.history)
	return out
}
