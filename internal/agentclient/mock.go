package agentclient

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MockClient is the MOCK_SDK deterministic simulator: it never calls out to
// a real LLM, instead recognizing a handful of canned prompt patterns so
// the end-to-end scenarios in the testable-properties section can run
// without network access.
type MockClient struct {
	mu               sync.Mutex
	rejectNextResume map[string]bool
}

// NewMockClient returns a ready-to-use simulator.
func NewMockClient() *MockClient {
	return &MockClient{rejectNextResume: map[string]bool{}}
}

// RejectNextResume arms a one-time "invalid_request" rejection the next
// time Stream is called with ResumeSessionID == sessionID, simulating an
// upstream session invalidation for the recovery scenario.
func (m *MockClient) RejectNextResume(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectNextResume[sessionID] = true
}

func (m *MockClient) Stream(ctx context.Context, req Request) (*Stream, error) {
	if req.ResumeSessionID != "" {
		m.mu.Lock()
		reject := m.rejectNextResume[req.ResumeSessionID]
		if reject {
			delete(m.rejectNextResume, req.ResumeSessionID)
		}
		m.mu.Unlock()
		if reject {
			events := make(chan streamEvent, 1)
			events <- streamEvent{msg: Message{
				Kind:           KindError,
				Err:            fmt.Errorf("invalid_request: session not found"),
				Classification: ClassSessionInvalid,
			}}
			close(events)
			return newStream(events, func() {}), nil
		}
	}

	sessionID := req.ResumeSessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply, toolCalls := m.reply(req.Prompt)

	events := make(chan streamEvent, 16)
	go func() {
		defer close(events)
		events <- streamEvent{msg: Message{Kind: KindInit, SessionID: sessionID}}
		events <- streamEvent{msg: Message{Kind: KindStream, StreamEvent: EventContentBlockStart}}
		for _, word := range strings.Fields(reply) {
			select {
			case <-ctx.Done():
				return
			default:
			}
			events <- streamEvent{msg: Message{Kind: KindStream, StreamEvent: EventTextDelta, Text: word + " "}}
		}
		events <- streamEvent{msg: Message{Kind: KindStream, StreamEvent: EventContentBlockEnd}}

		blocks := []ContentBlock{{Type: BlockText, Text: reply}}
		for _, tc := range toolCalls {
			blocks = append(blocks, tc)
			if req.ToolServer != nil {
				result := req.ToolServer.Call(tc.ToolName, tc.ToolInput)
				if req.PostToolHook != nil {
					hookCtx, cancel := context.WithTimeout(ctx, DefaultPostToolHookTimeout)
					req.PostToolHook(hookCtx, PostToolHookInput{HookEvent: "PostToolUse", ToolName: tc.ToolName, ToolInput: tc.ToolInput})
					cancel()
				}
				_ = result
			}
		}
		events <- streamEvent{msg: Message{Kind: KindAssistant, Content: blocks}}
	}()

	return newStream(events, func() {}), nil
}

func (m *MockClient) Complete(ctx context.Context, req Request) (string, error) {
	if strings.Contains(req.Prompt, "COMPACT") {
		return "The adventurer pressed on through a series of trials, growing wiser with each choice.", nil
	}
	reply, _ := m.reply(req.Prompt)
	return reply, nil
}

// reply implements the canned response table the deterministic scenarios
// depend on: a dark-forest theme trigger, a calm-village theme trigger
// (for the debounce scenario), a recap greeting, a state-checkpoint
// acknowledgement for the forced save, and a generic fallback.
func (m *MockClient) reply(prompt string) (string, []ContentBlock) {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "dark forest"):
		return "The trees close in around you, their branches clawing at a bruised sky.",
			[]ContentBlock{{
				Type: BlockToolUse, ToolUseID: uuid.NewString(), ToolName: "set_theme",
				ToolInput: map[string]any{"mood": "ominous", "genre": "high-fantasy", "region": "forest"},
			}}
	case strings.Contains(lower, "village") && strings.Contains(lower, "calm"):
		return "The village is peaceful this time of day, smoke curling from chimneys.",
			[]ContentBlock{{
				Type: BlockToolUse, ToolUseID: uuid.NewString(), ToolName: "set_theme",
				ToolInput: map[string]any{"mood": "calm", "genre": "high-fantasy", "region": "village"},
			}}
	case strings.Contains(lower, "recap session"):
		return "Welcome back, traveler. Let's pick up where you left off.", nil
	case strings.Contains(lower, "checkpoint") || strings.Contains(lower, "persist all volatile"):
		return "State has been written to the character and world files.", nil
	default:
		return "The story continues.", nil
	}
}
