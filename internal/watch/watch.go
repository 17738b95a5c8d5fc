// Package watch reruns a function when files under a set of paths change.
//
// Changes are debounced: an editor saving several files, or writing through
// a temp file and rename, triggers a single run.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/internal/logging"
)

// DefaultDebounce is the quiet period after the last change before a run.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// Filter selects the files whose changes matter. Nil accepts all.
	Filter func(path string) bool

	Logger *zap.SugaredLogger
}

// Watcher watches files and directories. Directories are watched
// recursively; directories created later are picked up.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	filter   func(string) bool
	log      *zap.SugaredLogger

	// files holds explicitly named files. Their parent directory is
	// watched, but only events for these names count there.
	files map[string]bool

	// trees holds the directories watched recursively.
	trees map[string]bool

	added map[string]bool
}

// New starts watching paths.
func New(paths []string, opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	w := &Watcher{
		fs:       fw,
		debounce: opts.Debounce,
		filter:   opts.Filter,
		log:      logging.Component(opts.Logger, "watch"),
		files:    make(map[string]bool),
		trees:    make(map[string]bool),
		added:    make(map[string]bool),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	for _, p := range paths {
		if err := w.add(filepath.Clean(p)); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return errors.Wrapf(err, "watch %s", p)
	}
	if !info.IsDir() {
		w.files[p] = true
		return w.addDir(filepath.Dir(p))
	}
	return filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != p && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		w.trees[path] = true
		return w.addDir(path)
	})
}

func (w *Watcher) addDir(dir string) error {
	if w.added[dir] {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}
	w.added[dir] = true
	w.log.Debugw("watching", logging.FieldFile, dir)
	return nil
}

// relevant reports whether ev should trigger a run. It also starts watching
// directories created under a watched directory.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Clean(ev.Name)
	if ev.Has(fsnotify.Create) {
		info, err := os.Stat(name)
		if err == nil && info.IsDir() && w.trees[filepath.Dir(name)] && !strings.HasPrefix(info.Name(), ".") {
			if err := w.add(name); err != nil {
				w.log.Warnw("could not watch new directory", logging.FieldFile, name, logging.FieldError, err)
			}
			return false
		}
	}
	if !w.files[name] && !w.trees[filepath.Dir(name)] {
		return false
	}
	return w.filter == nil || w.filter(name)
}

// Run calls fn once, then again after each batch of relevant changes, until
// ctx is done. Errors from fn are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	w.call(ctx, fn)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.log.Debugw("change detected", logging.FieldFile, ev.Name, "op", ev.Op.String())
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", logging.FieldError, err)
		case <-timer.C:
			w.call(ctx, fn)
		}
	}
}

func (w *Watcher) call(ctx context.Context, fn func(context.Context) error) {
	if err := fn(ctx); err != nil && ctx.Err() == nil {
		w.log.Errorw("run failed", logging.FieldError, err)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
