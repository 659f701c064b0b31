// Package watch notifies the REPL when a loaded source file changes on
// disk, so that with --watch a script brought in by ":load" is
// re-evaluated as it's edited.
package watch

import (
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Op indicates the kind of filesystem change observed.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Event describes a single filesystem change.
type Event struct {
	Path string
	Op   Op
}

// FileWatcher watches a set of paths for changes using OS-native
// notifications.
type FileWatcher struct {
	w   *fsnotify.Watcher
	evC chan Event
	erC chan error
}

// NewFileWatcher creates a FileWatcher and starts its delivery loop.
func NewFileWatcher() (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{w: w, evC: make(chan Event, 128), erC: make(chan error, 1)}
	go fw.loop()

	return fw, nil
}

func (fw *FileWatcher) loop() {
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}

			var op Op
			if ev.Op&fsnotify.Create != 0 {
				op |= OpCreate
			}

			if ev.Op&fsnotify.Write != 0 {
				op |= OpWrite
			}

			if ev.Op&fsnotify.Remove != 0 {
				op |= OpRemove
			}

			if ev.Op&fsnotify.Rename != 0 {
				op |= OpRename
			}

			if ev.Op&fsnotify.Chmod != 0 {
				op |= OpChmod
			}

			fw.evC <- Event{Path: ev.Name, Op: op}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}

			fw.erC <- err
		}
	}
}

// Events returns the channel of filesystem change notifications.
func (fw *FileWatcher) Events() <-chan Event { return fw.evC }

// Errors returns the channel of watcher errors.
func (fw *FileWatcher) Errors() <-chan error { return fw.erC }

// Add begins watching the given path.
func (fw *FileWatcher) Add(name string) error { return fw.w.Add(name) }

// Remove stops watching the given path.
func (fw *FileWatcher) Remove(name string) error { return fw.w.Remove(name) }

// Close releases the underlying OS watch descriptor.
func (fw *FileWatcher) Close() error { return fw.w.Close() }

// ReloadWatcher is the REPL's actual use of FileWatcher: a set of
// loaded source files, and a channel of paths to re-evaluate whenever
// one of them is written. A bare FileWatcher only hands back raw
// create/write/remove/rename/chmod events for whatever paths are
// added to it; ReloadWatcher is what turns that into the domain
// question the REPL's `--watch`/`:load` path actually asks — "did a
// file I loaded change?" — filtering out writes to paths that were
// never loaded and collapsing the five-way Op bitmask down to the one
// op a loaded-script reload cares about.
type ReloadWatcher struct {
	fw     *FileWatcher
	mu     sync.Mutex
	loaded map[string]bool
	reload chan string
}

// NewReloadWatcher creates a ReloadWatcher and starts its delivery loop.
func NewReloadWatcher() (*ReloadWatcher, error) {
	fw, err := NewFileWatcher()
	if err != nil {
		return nil, err
	}

	rw := &ReloadWatcher{fw: fw, loaded: make(map[string]bool), reload: make(chan string, 128)}
	go rw.loop()

	return rw, nil
}

func (rw *ReloadWatcher) loop() {
	for {
		ev, ok := <-rw.fw.Events()
		if !ok {
			close(rw.reload)
			return
		}

		if ev.Op&OpWrite == 0 {
			continue
		}

		rw.mu.Lock()
		tracked := rw.loaded[ev.Path]
		rw.mu.Unlock()

		if tracked {
			rw.reload <- ev.Path
		}
	}
}

// Track registers path as a loaded file: a later write to it surfaces
// on Reloads(). It also begins watching path at the OS level.
func (rw *ReloadWatcher) Track(path string) error {
	if err := rw.fw.Add(path); err != nil {
		return err
	}

	rw.mu.Lock()
	rw.loaded[path] = true
	rw.mu.Unlock()

	return nil
}

// ClearTracked forgets every tracked file without touching the
// underlying OS watch descriptors, e.g. on a REPL ":reset".
func (rw *ReloadWatcher) ClearTracked() {
	rw.mu.Lock()
	rw.loaded = make(map[string]bool)
	rw.mu.Unlock()
}

// Reloads returns the channel of loaded-file paths that changed on disk.
func (rw *ReloadWatcher) Reloads() <-chan string { return rw.reload }

// Errors returns the underlying watcher's error channel.
func (rw *ReloadWatcher) Errors() <-chan error { return rw.fw.Errors() }

// Close releases the underlying OS watch descriptor.
func (rw *ReloadWatcher) Close() error { return rw.fw.Close() }
