package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the registry from dir whenever a file under it changes.
// It blocks until ctx is cancelled. Reload failures are logged and leave the
// previous component set in place; only watcher setup failures are returned.
func Watch(ctx context.Context, reg *Registry, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("component: create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("component: watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if err := reg.Reload(dir); err != nil {
				logWatch("components_reload_failed", dir, err)
				continue
			}
			logWatch("components_reloaded", dir, nil)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logWatch("components_watch_error", dir, err)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !isYAMLFile(ev.Name) {
		return false
	}
	return ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) ||
		ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
}

func logWatch(event, dir string, err error) {
	entry := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     "info",
		"component": "registry",
		"event":     event,
		"dir":       dir,
	}
	if err != nil {
		entry["level"] = "error"
		entry["error"] = err.Error()
	}
	if b, mErr := json.Marshal(entry); mErr == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
