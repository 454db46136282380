package agentclient

import (
	"context"
	"time"
)

// PermissionMode mirrors the external agent SDK's permission contract;
// this spec only ever uses the one fixed value below, but the type is kept
// so a future caller isn't stuck re-threading a string.
type PermissionMode string

const PermissionModeAutoAcceptEdits PermissionMode = "auto-accept-edits"

// ToolCaller is satisfied by toolhost.Dispatcher: the tool server the agent
// client runs in-process and presents to the agent as a discoverable tool
// set.
type ToolCaller interface {
	Call(name string, args map[string]any) *ToolResult
}

// ToolResult is the shape a ToolCaller hands back; kept independent of
// toolhost.Result so this package has no import-time dependency on the
// dispatcher's own package.
type ToolResult struct {
	ForLLM  string
	IsError bool
}

// PostToolHookInput is delivered synchronously after each tool call.
type PostToolHookInput struct {
	HookEvent string
	ToolName  string
	ToolInput map[string]any
}

// PostToolHook runs with a bounded timeout (default 5s); if it times out
// the agent call proceeds regardless.
type PostToolHook func(ctx context.Context, in PostToolHookInput)

const DefaultPostToolHookTimeout = 5 * time.Second

// Request is one streaming call over a resumable session.
type Request struct {
	Prompt          string
	SystemPrompt    string
	ResumeSessionID string // "" means start a fresh conversation
	AllowedTools    []string
	ToolServer      ToolCaller
	CWD             string
	MaxTurns        int
	PermissionMode  PermissionMode
	PostToolHook    PostToolHook
	HookTimeout     time.Duration
}

// Client runs a streaming Game Master call against the external agent.
type Client interface {
	// Stream starts a streaming call and returns a pull-based Stream of
	// Messages terminated by io.EOF or a terminal KindError message.
	Stream(ctx context.Context, req Request) (*Stream, error)

	// Complete runs a single non-streaming call (used by the History
	// Compactor for its summarization prompt).
	Complete(ctx context.Context, req Request) (string, error)
}
