package gamesession

import (
	"context"
	"fmt"
	"strings"
)

const (
	recoveryContextMaxEntries = 20
	recoveryContextMaxChars   = 12000
)

// attemptRecovery implements §4.7.4: on a session-invalid failure, clear
// the stale agent-session-id, build a bounded recovery context, and retry
// the call once without resume. Returns (recovered, text, newSessionID).
func (s *Session) attemptRecovery(ctx context.Context, messageID, originalPrompt string) (bool, string, string) {
	s.mu.Lock()
	if s.recoveryAttempt >= 1 {
		s.mu.Unlock()
		return false, "", ""
	}
	s.recoveryAttempt++
	s.mu.Unlock()

	s.events.emitToolStatus(true, "Reconnecting…")

	if err := s.handle.ClearAgentSessionID(); err != nil {
		s.events.emitError("GM_ERROR", "failed to clear stale session", true, err.Error())
		return false, "", ""
	}

	recoveryPrompt := s.buildRecoveryPrompt(originalPrompt)

	s.events.emitToolStatus(true, "Restoring…")

	text, _, newSessionID := s.streamOnceNoResume(ctx, messageID, recoveryPrompt)
	return true, text, newSessionID
}

// buildRecoveryPrompt prepends a bounded slice of recent history (and any
// rolling summary) to the original prompt so the fresh agent conversation
// regains context it lost when its session id was invalidated.
func (s *Session) buildRecoveryPrompt(originalPrompt string) string {
	hist := s.handle.History()

	entries := hist.Entries
	if len(entries) > recoveryContextMaxEntries {
		entries = entries[len(entries)-recoveryContextMaxEntries:]
	}

	var b strings.Builder
	b.WriteString("RECOVERY CONTEXT (your previous session was lost; resume seamlessly, do not mention this to the player).\n\n")
	if hist.Summary != nil && hist.Summary.Text != "" {
		b.WriteString("Summary of earlier events:\n")
		b.WriteString(hist.Summary.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("Recent history:\n")
	budget := recoveryContextMaxChars
	for _, e := range entries {
		line := fmt.Sprintf("[%s] %s\n", e.Type, e.Content)
		if len(line) > budget {
			break
		}
		b.WriteString(line)
		budget -= len(line)
	}
	b.WriteString("\nContinue from here:\n")
	b.WriteString(originalPrompt)
	return b.String()
}
