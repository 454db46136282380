package gamesession

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/agentclient"
	"github.com/corvran/adventure-gm/internal/compactor"
	"github.com/corvran/adventure-gm/internal/sanitize"
	"github.com/corvran/adventure-gm/internal/tracing"
	"github.com/corvran/adventure-gm/pkg/protocol"
)

const forcedSavePrompt = "Persist all volatile state to files now. Do not narrate; just call the appropriate tools."

// toolDescriptions maps internal tool names to the vague, player-facing
// status text the client sees instead of the real tool name.
var toolDescriptions = map[string]string{
	"Write":        "Updating world state…",
	"write_file":   "Updating world state…",
	"set_theme":    "Shifting the scene…",
	"create_panel": "Preparing a new display…",
	"update_panel": "Refreshing a display…",
	"dismiss_panel": "Clearing a display…",
}

func toolDescription(name string) string {
	if d, ok := toolDescriptions[name]; ok {
		return d
	}
	return "Thinking…"
}

// HandleInput sanitizes (unless isSystemPrompt), enqueues, and kicks off
// the processor if it is idle.
func (s *Session) HandleInput(text string, isSystemPrompt bool) error {
	if !isSystemPrompt {
		result := sanitize.Sanitize(text)
		if result.Blocked {
			s.events.emitError(string(protocol.ErrGM), result.BlockReason, false, "")
			return fmt.Errorf("input blocked: %s", result.BlockReason)
		}
		text = result.Sanitized
	}

	s.mu.Lock()
	s.queue = append(s.queue, queueItem{text: text, isSystemPrompt: isSystemPrompt})
	shouldStart := !s.isProcessing
	if shouldStart {
		s.isProcessing = true
	}
	s.mu.Unlock()

	if shouldStart {
		go s.runQueue()
	}
	return nil
}

// Abort cancels the in-flight query (if any) and drops all queued inputs.
func (s *Session) Abort() {
	s.mu.Lock()
	s.queue = nil
	cancel := s.cancelCurrent
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Session) runQueue() {
	processedReal := false
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.isProcessing = false
			s.mu.Unlock()
			break
		}
		item := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if !item.isSystemPrompt {
			processedReal = true
		}
		s.processOne(item)
	}

	if processedReal && s.handle.IsCompactionPending() {
		s.processOne(queueItem{text: forcedSavePrompt, isSystemPrompt: true})
		s.runCompaction()
		s.handle.RunPendingCompaction()
	}
}

// processOne runs a single queued input end to end per §4.7.2, enforcing
// the wall-clock input timeout without poisoning the session on fire.
func (s *Session) processOne(item queueItem) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.InputTimeout)
	s.mu.Lock()
	s.cancelCurrent = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancelCurrent = nil
		s.mu.Unlock()
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.processOneInner(ctx, item)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			s.events.emitError(string(protocol.ErrProcessingTimeout), "The story is taking longer than expected to continue.", true, "")
			<-done
		}
	}
}

func (s *Session) processOneInner(ctx context.Context, item queueItem) {
	messageID := uuid.New().String()

	if !item.isSystemPrompt {
		if _, err := s.handle.AppendHistory(adventure.EntryPlayerInput, item.text); err != nil {
			s.events.emitError(string(protocol.ErrGM), "failed to record input", true, err.Error())
			return
		}
	}

	if s.events.GMResponseStart != nil {
		s.events.GMResponseStart(messageID)
	}

	ctx, span := tracing.StartAgentCall(ctx, s.adventureID())
	defer span.End()

	accumulated, wasAborted, agentSessionID := s.streamOnce(ctx, messageID, item.text)

	if s.events.GMResponseEnd != nil {
		s.events.GMResponseEnd(messageID)
	}
	s.events.emitToolStatus(false, map[bool]string{true: "Interrupted", false: "Ready"}[wasAborted])

	if accumulated != "" {
		final := accumulated
		if wasAborted {
			final += "\n\n*[Response interrupted]*"
		}
		if !item.isSystemPrompt {
			if _, err := s.handle.AppendHistory(adventure.EntryGMResponse, final); err != nil {
				s.events.emitError(string(protocol.ErrGM), "failed to record response", true, err.Error())
			}
			if err := s.handle.UpdateScene(adventure.Scene{Description: firstParagraph(final, 500), Location: s.handle.Snapshot().CurrentScene.Location}); err != nil {
				s.events.emitError(string(protocol.ErrGM), "failed to persist scene", true, err.Error())
			}
			s.checkCompactionThreshold()
		}
	}
	if agentSessionID != "" {
		if err := s.handle.UpdateAgentSessionID(agentSessionID); err != nil {
			s.events.emitError(string(protocol.ErrGM), "failed to persist agent session", true, err.Error())
		}
	}
	if !wasAborted {
		s.mu.Lock()
		s.recoveryAttempt = 0
		s.mu.Unlock()
	}
}

// streamOnce runs one streaming agent call, resuming the session's prior
// agent-session-id if any, returning the accumulated text, whether it was
// aborted, and the observed agent session id. On a session-invalid error
// it attempts recovery (§4.7.4) once.
func (s *Session) streamOnce(ctx context.Context, messageID, prompt string) (string, bool, string) {
	snap := s.handle.Snapshot()
	resume := ""
	if snap.AgentSessionID != nil {
		resume = *snap.AgentSessionID
	}
	return s.stream(ctx, messageID, prompt, resume, true)
}

// streamOnceNoResume runs the agent call with no resume id and with
// recovery disabled, used by the recovery path itself so a second failure
// surfaces as a plain error instead of recursing.
func (s *Session) streamOnceNoResume(ctx context.Context, messageID, prompt string) (string, bool, string) {
	return s.stream(ctx, messageID, prompt, "", false)
}

func (s *Session) stream(ctx context.Context, messageID, prompt, resume string, allowRecovery bool) (string, bool, string) {
	req := agentclient.Request{
		Prompt:          prompt,
		SystemPrompt:    s.buildSystemPrompt(),
		ResumeSessionID: resume,
		ToolServer:      dispatcherAdapter{d: s.dispatcher},
		CWD:             s.projectDir,
		PermissionMode:  agentclient.PermissionModeAutoAcceptEdits,
		PostToolHook:    s.postToolHook,
		HookTimeout:     agentclient.DefaultPostToolHookTimeout,
	}

	stream, err := s.client.Stream(ctx, req)
	if err != nil {
		return "", false, ""
	}
	defer stream.Close()

	var b strings.Builder
	wasAborted := false
	agentSessionID := ""
	blocksSeen := 0

	for {
		msg, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		switch msg.Kind {
		case agentclient.KindInit:
			agentSessionID = msg.SessionID
		case agentclient.KindStream:
			if msg.StreamEvent == agentclient.EventTextDelta && msg.Text != "" {
				b.WriteString(msg.Text)
				if s.events.GMResponseChunk != nil {
					s.events.GMResponseChunk(messageID, msg.Text)
				}
			}
		case agentclient.KindAssistant:
			for _, block := range msg.Content {
				switch block.Type {
				case agentclient.BlockText:
					if blocksSeen > 0 {
						b.WriteString("\n\n")
						if s.events.GMResponseChunk != nil {
							s.events.GMResponseChunk(messageID, "\n\n")
						}
					}
					blocksSeen++
				case agentclient.BlockToolUse:
					s.events.emitToolStatus(true, toolDescription(block.ToolName))
				}
			}
		case agentclient.KindError:
			if allowRecovery && msg.Classification == agentclient.ClassSessionInvalid {
				recovered, recText, recSessionID := s.attemptRecovery(ctx, messageID, prompt)
				if recovered {
					return recText, false, recSessionID
				}
			}
			s.events.emitError(string(protocol.ErrGM), "The Game Master lost the thread.", true, msg.Err.Error())
			return b.String(), false, agentSessionID
		}
		select {
		case <-ctx.Done():
			wasAborted = true
		default:
		}
		if wasAborted {
			break
		}
	}

	return b.String(), wasAborted, agentSessionID
}

func (s *Session) postToolHook(ctx context.Context, in agentclient.PostToolHookInput) {
	if s.panelHook != nil {
		s.panelHook.Process(in.ToolName, in.ToolInput)
	}
}

func (s *Session) adventureID() string {
	if s.handle == nil {
		return ""
	}
	return s.handle.Snapshot().ID
}

func (s *Session) buildSystemPrompt() string {
	snap := s.handle.Snapshot()
	prompt := fmt.Sprintf(
		"Current scene: %s\nLocation: %s\nMood: %s\n",
		sanitize.StateValue(snap.CurrentScene.Description, 500),
		sanitize.StateValue(snap.CurrentScene.Location, 500),
		sanitize.StateValue(snap.CurrentTheme.Mood, 500),
	)
	if s.panelHook != nil && len(s.panelHook.ValidationErrors) > 0 {
		prompt = "Panel Validation Errors:\n- " + strings.Join(s.panelHook.ValidationErrors, "\n- ") + "\n\n" + prompt
		s.panelHook.ValidationErrors = nil
	}
	return prompt
}

func firstParagraph(text string, max int) string {
	para := text
	if idx := strings.Index(text, "\n\n"); idx >= 0 {
		para = text[:idx]
	}
	if len(para) > max {
		para = para[:max]
	}
	return para
}

// checkCompactionThreshold flips the state store's compaction-pending bit
// once retained history grows well past the compactor's own target, so the
// external scheduling §4.1 describes is simply "grew too large": the next
// queue drain runs a forced save and compaction before going idle.
func (s *Session) checkCompactionThreshold() {
	cfg := s.cfg.CompactionCfg
	hist := s.handle.History()
	if len(hist.Entries) <= cfg.RetainedCount*2 {
		return
	}
	chars := 0
	for _, e := range hist.Entries {
		chars += len(e.Content)
	}
	if chars > cfg.TargetRetainedCharCount*2 {
		s.handle.MarkCompactionPending(true)
	}
}

func (s *Session) runCompaction() {
	hist := s.handle.History()
	res := compactor.Run(context.Background(), s.client, s.handle.Dir(), hist, s.cfg.CompactionCfg)
	if !res.Success {
		return
	}
	newHist := adventure.History{Entries: res.RetainedEntries, Summary: res.Summary}
	if err := s.handle.ReplaceHistory(newHist); err != nil {
		s.events.emitError(string(protocol.ErrGM), "failed to persist compacted history", true, err.Error())
	}
}
