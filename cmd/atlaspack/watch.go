package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long the watcher waits after the last change before
// exporting, so an editor's burst of writes produces one export.
const settleDelay = 200 * time.Millisecond

// watch re-packs inputs as they change until ctx is cancelled.
func (b *builder) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, in := range b.cfg.Inputs {
		if err := watchRecursive(w, in); err != nil {
			return err
		}
	}
	b.log.Info("watching inputs", "inputs", b.cfg.Inputs)

	timer := time.NewTimer(settleDelay)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			if pending {
				return b.export()
			}
			return nil

		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if b.handleEvent(w, e) {
				pending = true
				timer.Reset(settleDelay)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.log.Warn("watcher error", "error", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := b.export(); err != nil {
				b.log.Error("export failed", "error", err)
			}
		}
	}
}

// handleEvent applies one file system event to the atlas and reports
// whether the atlas changed. w may be nil when no new directories need to
// be watched.
func (b *builder) handleEvent(w *fsnotify.Watcher, e fsnotify.Event) bool {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if w != nil {
				if err := watchRecursive(w, e.Name); err != nil {
					b.log.Warn("watch directory", "path", e.Name, "error", err)
				}
			}
			return b.addTree(e.Name)
		}
	}

	if !isImage(e.Name) {
		return false
	}
	if _, ok := b.spriteName(e.Name); !ok {
		return false
	}

	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if err := b.add(e.Name); err != nil {
			b.log.Warn("repack failed", "path", e.Name, "error", err)
			return false
		}
		return true

	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		name, _ := b.spriteName(e.Name)
		if _, known := b.sprites[name]; !known {
			return false
		}
		if err := b.remove(name); err != nil {
			b.log.Warn("free failed", "name", name, "error", err)
		}
		return true
	}
	return false
}

// addTree packs every image below dir and reports whether any was added.
func (b *builder) addTree(dir string) bool {
	changed := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isImage(path) {
			return nil
		}
		if err := b.add(path); err != nil {
			b.log.Warn("pack failed", "path", path, "error", err)
			return nil
		}
		changed = true
		return nil
	})
	return changed
}

// watchRecursive adds root and every directory below it to w. A file root
// is watched through its parent directory.
func watchRecursive(w *fsnotify.Watcher, root string) error {
	s, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !s.IsDir() {
		return w.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
