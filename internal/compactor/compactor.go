// Package compactor implements the History Compactor (C10): it summarizes
// older narrative entries via the agent and retains a bounded tail,
// writing archived entries to a rotating file so compaction never loses
// data even on failure.
package compactor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/agentclient"
	"github.com/corvran/adventure-gm/internal/filestore"
)

// Config tunes a compaction run.
type Config struct {
	RetainedCount           int
	TargetRetainedCharCount int
	Model                   string
}

// DefaultConfig returns sane defaults: keep at least 10 entries, and trim
// further only to stay under roughly 12,000 characters.
func DefaultConfig() Config {
	return Config{RetainedCount: 10, TargetRetainedCharCount: 12000}
}

// Result is the outcome of one compaction attempt.
type Result struct {
	Success          bool
	Error            string
	ArchivePath      string
	EntriesArchived  int
	RetainedEntries  []adventure.Entry
	Summary          *adventure.Summary
}

// Run determines the cut-point, summarizes the archived tail via client,
// and writes the archive file. On any failure it returns Success:false and
// leaves hist untouched — callers must not apply partial results.
func Run(ctx context.Context, client agentclient.Client, dir string, hist adventure.History, cfg Config) Result {
	cut := cutPoint(hist.Entries, cfg.RetainedCount, cfg.TargetRetainedCharCount)
	if cut == 0 {
		return Result{Success: true, RetainedEntries: hist.Entries, Summary: hist.Summary}
	}

	toArchive := hist.Entries[:cut]
	retained := hist.Entries[cut:]

	prompt := buildCompactPrompt(toArchive, hist.Summary)
	summaryText, err := client.Complete(ctx, agentclient.Request{Prompt: prompt})
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("compactor: summarize call failed: %v", err)}
	}

	covering := make([]string, 0, len(toArchive))
	for _, e := range toArchive {
		covering = append(covering, e.ID)
	}
	if hist.Summary != nil {
		covering = append(covering, hist.Summary.CoveringEntryIDs...)
	}
	summary := &adventure.Summary{Text: strings.TrimSpace(summaryText), CoveringEntryIDs: covering}

	archivePath, err := writeArchive(dir, toArchive)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("compactor: write archive failed: %v", err)}
	}

	return Result{
		Success:         true,
		ArchivePath:     archivePath,
		EntriesArchived: len(toArchive),
		RetainedEntries: retained,
		Summary:         summary,
	}
}

// cutPoint returns the index at which entries should be split into
// archived (before) and retained (at-or-after): the retained tail always
// keeps at least retainedCount entries, and only trims further to respect
// targetChars once that floor is satisfied.
func cutPoint(entries []adventure.Entry, retainedCount, targetChars int) int {
	n := len(entries)
	keep, chars := 0, 0
	for i := n - 1; i >= 0; i-- {
		size := len(entries[i].Content)
		if keep < retainedCount {
			keep++
			chars += size
			continue
		}
		if chars+size <= targetChars {
			keep++
			chars += size
			continue
		}
		break
	}
	if keep >= n {
		return 0
	}
	return n - keep
}

func buildCompactPrompt(archived []adventure.Entry, prevSummary *adventure.Summary) string {
	var b strings.Builder
	b.WriteString("COMPACT the following narrative history into a concise summary.\n\n")
	if prevSummary != nil && prevSummary.Text != "" {
		b.WriteString("Previous summary:\n")
		b.WriteString(prevSummary.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("Entries to fold into the summary:\n")
	for _, e := range archived {
		fmt.Fprintf(&b, "[%s] %s: %s\n", e.Timestamp.Format(time.RFC3339), e.Type, e.Content)
	}
	return b.String()
}

func writeArchive(dir string, entries []adventure.Entry) (string, error) {
	name := fmt.Sprintf("history-archive-%s.json", time.Now().UTC().Format("20060102T150405.000000000Z"))
	data, err := json.MarshalIndent(struct {
		Entries []adventure.Entry `json:"entries"`
	}{Entries: entries}, "", "  ")
	if err != nil {
		return "", err
	}
	if err := filestore.WriteFile(dir, name, data); err != nil {
		return "", err
	}
	return name, nil
}
