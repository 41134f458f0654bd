// internal/content/watch.go
//
// Filesystem watch for the identifier backfill.
//
// Workflow
// --------
//  1. Watch <dir>/<locale> for every locale that exists on disk.
//  2. Collect Create/Write/Rename events on .md and .mdx files.
//  3. After `quiet` passes with no new event, call fn once per touched
//     locale.  Editors save in bursts; this keeps one run per burst.
//
// Notes
// -----
// • The Assigner's own atomic rewrite triggers one more event; the second
//   run finds every identifier present and writes nothing, so the loop
//   settles.
// • Oxford commas, two spaces after periods.

package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch blocks until ctx ends, calling fn for each locale whose source files
// changed.  fn runs on the watch goroutine.
func Watch(ctx context.Context, dir string, locales []string, quiet time.Duration, fn func(locale string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := 0
	for _, l := range locales {
		p := filepath.Join(dir, l)
		if fi, err := os.Stat(p); err != nil || !fi.IsDir() {
			continue
		}
		if err := w.Add(p); err != nil {
			return err
		}
		watched++
	}
	if watched == 0 {
		return errors.New("content: nothing to watch")
	}

	pending := map[string]bool{}
	timer := time.NewTimer(quiet)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !isSource(ev.Name) {
				continue
			}
			pending[filepath.Base(filepath.Dir(ev.Name))] = true
			timer.Reset(quiet)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			zap.L().Warn("content watch error", zap.Error(err))

		case <-timer.C:
			touched := make([]string, 0, len(pending))
			for l := range pending {
				touched = append(touched, l)
			}
			sort.Strings(touched)
			clear(pending)
			for _, l := range touched {
				fn(l)
			}
		}
	}
}

func isSource(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".mdx"
}
