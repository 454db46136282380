package panels

import (
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
)

// Watcher is the belt-and-suspenders filesystem watch on <playerRef>/panels/
// resolving the design notes' open question in favor of a real watch
// in addition to (not instead of) the heuristic Bash-command sniffing in
// Hook.Process: a panel deleted some way the heuristic doesn't recognize
// (a GUI file manager, an out-of-band script) is still caught here.
type Watcher struct {
	fsw  *fsnotify.Watcher
	hook *Hook
	done chan struct{}
}

// NewWatcher starts watching dir. If dir does not exist at that moment it
// is not added, and this Watcher does not watch it even after the
// directory is created.
func NewWatcher(dir string, hook *Hook) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(dir); statErr == nil {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	w := &Watcher{fsw: fsw, hook: hook, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("panels: fsnotify watch error", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	id, ok := w.hook.panelIDFromPath(event.Name)
	if !ok {
		return
	}
	switch {
	case event.Op&fsnotify.Remove != 0 || event.Op&fsnotify.Rename != 0:
		if w.hook.Registry.Dismiss(id) && w.hook.Emit.OnDismiss != nil {
			w.hook.Emit.OnDismiss(id)
		}
	case event.Op&fsnotify.Write != 0 || event.Op&fsnotify.Create != 0:
		w.hook.processWrite(map[string]any{"file_path": event.Name})
	}
}

// Close stops the watch.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
