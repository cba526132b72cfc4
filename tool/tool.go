// Package tool implements the function calling subsystem that lets the
// tutor's language model invoke structured capabilities (creating flash
// cards, flipping them, building quizzes) with schema validated arguments
// and consistent error handling.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/tutormesh/internal/util"
	"github.com/hupe1980/tutormesh/logging"
)

// Tool is a capability the model may invoke by name.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case).
	Name() string

	// Description returns a human-readable description provided to the
	// model so it understands when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool. Arguments have been parsed from JSON and are
	// validated against the tool's schema by the FunctionTool wrapper.
	Call(toolCtx *Context, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// Context is the constrained surface handed to tool implementations: the
// invocation's context, a correlating call id and a logger.
type Context struct {
	ctx    context.Context
	callID string
	logger logging.Logger
}

// NewContext builds a tool context for one function call.
func NewContext(ctx context.Context, callID string, logger logging.Logger) *Context {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context{ctx: ctx, callID: callID, logger: logger}
}

// Context returns the context associated with the tool invocation.
func (c *Context) Context() context.Context { return c.ctx }

// CallID returns the function call id associated with the tool invocation.
func (c *Context) CallID() string { return c.callID }

// Logger returns the logger associated with the tool invocation.
func (c *Context) Logger() logging.Logger { return c.logger }
