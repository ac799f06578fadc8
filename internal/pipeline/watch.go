package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a new scan must stay unchanged before it is
// processed. Scanners write large files in several chunks.
const DefaultSettle = time.Second

// Watch processes every scan that appears in dir until ctx is done. Scans
// arriving together are processed in one run. Output is never cleared while
// watching, so every run adds to the sheets stored so far.
func (p *Pipeline) Watch(ctx context.Context, dir string, settle time.Duration, onResult func(*Result)) error {
	p.ClearOutput = false
	return watchScans(ctx, dir, settle, func(scans []string) error {
		res, err := p.Run(ctx, scans)
		if err != nil {
			return err
		}
		if onResult != nil {
			onResult(res)
		}
		return nil
	})
}

// watchScans calls fn with the scans created or rewritten in dir, once each
// has been quiet for settle. An error from fn stops the watch.
func watchScans(ctx context.Context, dir string, settle time.Duration, fn func([]string) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.WithField("dir", dir).Info("watching for scans")

	tick := settle / 4
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := map[string]time.Time{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				if IsScan(ev.Name) {
					pending[ev.Name] = time.Now()
				}
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				delete(pending, ev.Name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")

		case now := <-ticker.C:
			var ready []string
			for name, t := range pending {
				if now.Sub(t) >= settle {
					ready = append(ready, name)
					delete(pending, name)
				}
			}
			if len(ready) == 0 {
				continue
			}
			sort.Strings(ready)
			log.WithField("scans", len(ready)).Info("processing new scans")
			if err := fn(ready); err != nil {
				return err
			}
		}
	}
}
