package gamesession

import (
	"context"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/compactor"
)

const recapPrompt = "RECAP SESSION"

// HandleRecap runs the full checkpoint-and-summarize cycle (§4.7.3). It is
// a no-op, reported via RecapError, unless the session is idle, has at
// least RecapMinHistory retained entries, and knows its adventure
// directory.
func (s *Session) HandleRecap() {
	s.mu.Lock()
	processing := s.isProcessing
	s.mu.Unlock()
	if processing {
		s.events.emitRecapError("a response is already in progress")
		return
	}

	hist := s.handle.History()
	if len(hist.Entries) < s.cfg.RecapMinHistory {
		s.events.emitRecapError("not enough history to recap yet")
		return
	}
	if s.handle.Dir() == "" {
		s.events.emitRecapError("adventure directory unknown")
		return
	}

	if s.events.RecapStarted != nil {
		s.events.RecapStarted()
	}

	s.mu.Lock()
	s.isProcessing = true
	s.mu.Unlock()
	s.processOne(queueItem{text: forcedSavePrompt, isSystemPrompt: true})
	s.mu.Lock()
	s.isProcessing = false
	s.mu.Unlock()

	hist = s.handle.History()
	cfg := s.cfg.CompactionCfg
	cfg.RetainedCount = 0
	cfg.TargetRetainedCharCount = 0
	res := compactor.Run(context.Background(), s.client, s.handle.Dir(), hist, cfg)
	if !res.Success {
		s.events.emitRecapError(res.Error)
		return
	}

	newHist := adventure.History{Entries: []adventure.Entry{}, Summary: res.Summary}
	if err := s.handle.ReplaceHistory(newHist); err != nil {
		s.events.emitRecapError(err.Error())
		return
	}
	if err := s.handle.ClearAgentSessionID(); err != nil {
		s.events.emitRecapError(err.Error())
		return
	}

	if s.events.RecapComplete != nil {
		s.events.RecapComplete(newHist, newHist.Summary)
	}

	_ = s.HandleInput(recapPrompt, true)
}
