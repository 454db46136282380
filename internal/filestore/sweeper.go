package filestore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/adhocore/gronx/pkg/tasker"
)

// orphanAge is how old a leftover .tmp file must be before the sweeper
// considers its writer crashed rather than merely slow.
const orphanAge = 10 * time.Minute

// Sweeper periodically removes orphaned "<dir>/.<name>.tmp" files left
// behind by a crashed atomic write — the failure mode of WriteFile itself,
// not a feature of any one component.
type Sweeper struct {
	roots []string
	expr  string
	task  *tasker.Tasker
}

// NewSweeper builds a sweeper that walks roots on the given cron expression
// (default: hourly, "0 * * * *").
func NewSweeper(expr string, roots ...string) *Sweeper {
	if expr == "" {
		expr = "0 * * * *"
	}
	return &Sweeper{roots: roots, expr: expr}
}

// Start launches the background cron schedule. Call Stop to halt it.
func (s *Sweeper) Start(ctx context.Context) error {
	if !gronx.IsValid(s.expr) {
		return errInvalidCron(s.expr)
	}
	taskr := tasker.New(tasker.Option{Verbose: false})
	taskr.Task(s.expr, func(ctx context.Context) (int, error) {
		n := s.sweepOnce()
		if n > 0 {
			slog.Info("filestore: swept orphaned temp files", "count", n)
		}
		return 0, nil
	})
	s.task = taskr
	go taskr.Run()
	return nil
}

// Stop halts the cron schedule.
func (s *Sweeper) Stop() {
	if s.task != nil {
		s.task.Stop()
	}
}

// sweepOnce walks every root once and removes stale temp files, returning
// how many it removed.
func (s *Sweeper) sweepOnce() int {
	removed := 0
	cutoff := time.Now().Add(-orphanAge)
	for _, root := range s.roots {
		filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d == nil || d.IsDir() {
				return nil
			}
			name := d.Name()
			if !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".tmp") {
				return nil
			}
			info, statErr := d.Info()
			if statErr != nil || info.ModTime().After(cutoff) {
				return nil
			}
			if rmErr := os.Remove(path); rmErr == nil {
				removed++
			}
			return nil
		})
	}
	return removed
}

type errInvalidCron string

func (e errInvalidCron) Error() string { return "filestore: invalid cron expression: " + string(e) }
