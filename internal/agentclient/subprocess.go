package agentclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// wireMessage is the newline-delimited JSON shape exchanged with the
// external agent subprocess, mirroring the init/stream/assistant/error
// kinds jack-phare-goat's pkg/types models for the same external SDK
// contract.
type wireMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Event     string          `json:"event,omitempty"`
	Text      string          `json:"text,omitempty"`
	Content   []wireBlock     `json:"content,omitempty"`
	ToolCall  *wireToolCall   `json:"tool_call,omitempty"`
	Code      string          `json:"code,omitempty"`
	Message   string          `json:"message,omitempty"`
}

type wireBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

type wireToolCall struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// SubprocessClient runs the external agent as a co-process communicating
// over newline-delimited JSON on stdout, with tool calls dispatched
// in-process via req.ToolServer and echoed back to the subprocess on
// stdin — the "co-process or in-process dispatcher" option from §4.4.
type SubprocessClient struct {
	Command string
	Args    []string
}

// NewSubprocessClient builds a client that launches command for every
// streaming call.
func NewSubprocessClient(command string, args ...string) *SubprocessClient {
	return &SubprocessClient{Command: command, Args: args}
}

func (c *SubprocessClient) Stream(ctx context.Context, req Request) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("agentclient: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("agentclient: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("agentclient: start: %w", err)
	}

	events := make(chan streamEvent, 8)
	go c.pump(ctx, req, stdin, stdout, events)

	return newStream(events, cancel), nil
}

func (c *SubprocessClient) Complete(ctx context.Context, req Request) (string, error) {
	stream, err := c.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var text string
	for {
		msg, err := stream.Next()
		if err == io.EOF {
			return text, nil
		}
		if err != nil {
			return "", err
		}
		if msg.Kind == KindAssistant {
			for _, b := range msg.Content {
				if b.Type == BlockText {
					text += b.Text
				}
			}
		}
	}
}

func (c *SubprocessClient) pump(ctx context.Context, req Request, stdin io.WriteCloser, stdout io.Reader, out chan<- streamEvent) {
	defer close(out)
	defer stdin.Close()

	initPayload, _ := json.Marshal(map[string]any{
		"prompt":           req.Prompt,
		"system_prompt":    req.SystemPrompt,
		"resume_session_id": req.ResumeSessionID,
		"allowed_tools":    req.AllowedTools,
		"permission_mode":  req.PermissionMode,
		"max_turns":        req.MaxTurns,
		"cwd":              req.CWD,
	})
	if _, err := stdin.Write(append(initPayload, '\n')); err != nil {
		out <- streamEvent{err: fmt.Errorf("agentclient: write request: %w", err)}
		return
	}

	hookTimeout := req.HookTimeout
	if hookTimeout <= 0 {
		hookTimeout = DefaultPostToolHookTimeout
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var wm wireMessage
		if err := json.Unmarshal(scanner.Bytes(), &wm); err != nil {
			continue // tolerate stray non-JSON lines from the subprocess
		}

		switch wm.Type {
		case "init":
			out <- streamEvent{msg: Message{Kind: KindInit, SessionID: wm.SessionID}}
		case "stream":
			out <- streamEvent{msg: Message{Kind: KindStream, StreamEvent: StreamEventKind(wm.Event), Text: wm.Text}}
		case "assistant":
			blocks := make([]ContentBlock, 0, len(wm.Content))
			for _, b := range wm.Content {
				block := ContentBlock{Type: ContentBlockType(b.Type), Text: b.Text, ToolUseID: b.ID, ToolName: b.Name, ToolInput: b.Input}
				blocks = append(blocks, block)
				if block.Type == BlockToolUse && req.ToolServer != nil {
					result := req.ToolServer.Call(block.ToolName, block.ToolInput)
					c.runPostToolHook(ctx, req, block, hookTimeout)
					reply, _ := json.Marshal(map[string]any{
						"type":         "tool_result",
						"tool_use_id":  block.ToolUseID,
						"content":      result.ForLLM,
						"is_error":     result.IsError,
					})
					stdin.Write(append(reply, '\n'))
				}
			}
			out <- streamEvent{msg: Message{Kind: KindAssistant, Content: blocks}}
		case "error":
			out <- streamEvent{msg: Message{Kind: KindError, Err: fmt.Errorf("%s", wm.Message), Classification: Classify(wm.Code, wm.Message)}}
			return
		default:
			slog.Warn("agentclient: unrecognized message type from subprocess", "type", wm.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		out <- streamEvent{err: fmt.Errorf("agentclient: read stdout: %w", err)}
	}
}

func (c *SubprocessClient) runPostToolHook(ctx context.Context, req Request, block ContentBlock, timeout time.Duration) {
	if req.PostToolHook == nil {
		return
	}
	hookCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		req.PostToolHook(hookCtx, PostToolHookInput{HookEvent: "PostToolUse", ToolName: block.ToolName, ToolInput: block.ToolInput})
		close(done)
	}()
	select {
	case <-done:
	case <-hookCtx.Done():
		slog.Warn("agentclient: post-tool hook timed out", "tool", block.ToolName)
	}
}
