package panel

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher drops an HTMLEnvironment's cached templates when the files
// they were parsed from change on disk, so edits show up on the next
// render without a restart.
type Watcher struct {
	env     *HTMLEnvironment
	root    string
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching root, and every directory under it, for
// changes. root should be the directory the HTMLEnvironment reads its
// templates from. Changed files are invalidated by their path relative
// to root.
//
// Watching stops when ctx is done or Close is called.
func Watch(ctx context.Context, env *HTMLEnvironment, root string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	w := &Watcher{
		env:     env,
		root:    root,
		watcher: watcher,
		done:    make(chan struct{}),
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("error watching %q: %w", root, err)
	}
	go w.loop(ctx)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			Logger(ctx).ErrorContext(ctx, "error watching templates", "root", w.root, "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	rel = filepath.ToSlash(rel)
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				Logger(ctx).ErrorContext(ctx, "error watching new directory", "path", rel, "error", err)
			}
			return
		}
	}
	w.env.Invalidate(rel)
	Logger(ctx).DebugContext(ctx, "template changed", "path", rel, "op", event.Op.String())
}

// Close stops watching and waits for the Watcher to finish.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
	})
	<-w.done
	return err
}
