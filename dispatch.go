package vmaxtui

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// FileAction classifies a filesystem event the way the dispatcher routes
// it. Moved and Other exist so callers can report them; neither is queued.
type FileAction int

const (
	ActionAdd FileAction = iota
	ActionModified
	ActionDelete
	ActionMoved
	ActionOther
)

func (a FileAction) String() string {
	switch a {
	case ActionAdd:
		return "Add"
	case ActionModified:
		return "Modified"
	case ActionDelete:
		return "Delete"
	case ActionMoved:
		return "Moved"
	}
	return "Other"
}

// watchSuffixes are the artifact kinds the add queue accepts.
var watchSuffixes = []string{".vmax", ".bsz", ".zip"}

// Dispatcher receives watcher callbacks and routes paths into its add and
// remove queues. It never blocks: queue pushes are mutex-bounded and
// deduplicated. A stopped dispatcher drops every callback immediately.
type Dispatcher struct {
	Adds    *FileQueue
	Removes *FileQueue

	stopped atomic.Bool
	log     Logger
}

func NewDispatcher(log Logger) *Dispatcher {
	if log == nil {
		log = NewNopLogger()
	}
	return &Dispatcher{
		Adds:    NewFileQueue(),
		Removes: NewFileQueue(),
		log:     log,
	}
}

// Stop makes every subsequent callback a no-op. Called from the signal
// handler; safe from any goroutine.
func (d *Dispatcher) Stop() {
	d.stopped.Store(true)
}

func (d *Dispatcher) Stopped() bool {
	return d.stopped.Load()
}

// HandleFileAction classifies one event and routes it.
//
// Deletes of .bsz artifacts go to the remove queue so an in-flight render
// can be cancelled. Adds and modifications of renderable artifacts go to
// the add queue unless they land in a download/ staging directory. Anything
// else is ignored.
func (d *Dispatcher) HandleFileAction(dir, filename string, action FileAction, oldFilename string) {
	if d.stopped.Load() {
		return
	}
	path := filepath.Join(dir, filename)
	switch action {
	case ActionDelete:
		if strings.HasSuffix(path, ".bsz") {
			if d.Removes.Push(path) {
				d.log.Infof("delete observed, cancelling work on %s", path)
			}
		}
	case ActionAdd, ActionModified:
		if !hasWatchSuffix(path) {
			return
		}
		if strings.HasSuffix(strings.TrimSuffix(filepath.ToSlash(dir), "/")+"/", "download/") {
			return
		}
		if d.Adds.Push(path) {
			d.log.Debugf("queued %s (%s)", path, action)
		}
	}
}

func hasWatchSuffix(path string) bool {
	for _, suffix := range watchSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// Watcher feeds a Dispatcher from fsnotify events. fsnotify watches are
// per-directory, so the watcher walks the root at startup and adds newly
// created directories on the fly to behave recursively.
type Watcher struct {
	fw   *fsnotify.Watcher
	disp *Dispatcher
	log  Logger
}

func NewWatcher(disp *Dispatcher, log Logger) (*Watcher, error) {
	if log == nil {
		log = NewNopLogger()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fw: fw, disp: disp, log: log}, nil
}

// Watch registers root and all its current subdirectories.
func (w *Watcher) Watch(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		// .vmax bundles are directories; watching inside them would route
		// every member file, so only their container is observed.
		if strings.HasSuffix(path, ".vmax") && path != root {
			return fs.SkipDir
		}
		return w.fw.Add(path)
	})
}

// Run pumps events into the dispatcher until ctx is cancelled or the
// watcher closes. It runs on its own goroutine, mirroring the dedicated
// watcher thread of the underlying OS facility.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Errorf("watcher: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	dir, name := filepath.Split(event.Name)
	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasSuffix(event.Name, ".vmax") {
				if err := w.fw.Add(event.Name); err != nil {
					w.log.Warnf("watch %s: %v", event.Name, err)
				}
			}
		}
		w.disp.HandleFileAction(dir, name, ActionAdd, "")
	case event.Has(fsnotify.Write):
		w.disp.HandleFileAction(dir, name, ActionModified, "")
	case event.Has(fsnotify.Remove):
		w.disp.HandleFileAction(dir, name, ActionDelete, "")
	case event.Has(fsnotify.Rename):
		w.disp.HandleFileAction(dir, name, ActionMoved, "")
	}
}

func (w *Watcher) Close() error {
	return w.fw.Close()
}
