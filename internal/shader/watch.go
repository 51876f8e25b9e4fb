package shader

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"

	"github.com/spaghettifunk/anima-build/internal/config"
	"github.com/spaghettifunk/anima-build/internal/core"
	"github.com/spaghettifunk/anima-build/internal/process"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher reruns a whole batch whenever a shader or include file changes.
type Watcher struct {
	cfg      config.Shader
	runner   process.Runner
	fsnotify *fsnotify.Watcher
	// dirs is every directory currently watched, by the path events use.
	dirs map[string]struct{}

	// Debounce is how long the watcher waits for the tree to settle
	// before starting a batch.
	Debounce time.Duration
	// OnBatch is called after every batch, including the initial one.
	OnBatch func(BatchResult, error)
}

func NewWatcher(cfg config.Shader, runner process.Runner) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, eris.Wrap(err, "unable to create file watcher")
	}
	return &Watcher{
		cfg:      cfg,
		runner:   runner,
		fsnotify: fsWatch,
		dirs:     make(map[string]struct{}),
		Debounce: DefaultDebounce,
	}, nil
}

// Run compiles once, then keeps recompiling on changes until ctx is done.
// A failing batch does not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsnotify.Close()

	if err := w.watchRecursive(w.cfg.Source); err != nil {
		return err
	}
	for _, dir := range w.cfg.Includes {
		if err := w.watchRecursive(dir); err != nil {
			core.LogWarn("Not watching include directory %s: %v", dir, err)
		}
	}

	w.rebuild(ctx)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return nil
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := w.watchRecursive(e.Name); err != nil {
						core.LogError(err.Error())
					}
					fire = time.After(w.Debounce)
					continue
				}
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.forget(e.Name) {
				core.LogDebug("Directory gone: %s", e.Name)
				fire = time.After(w.Debounce)
				continue
			}
			if IsShaderFile(e.Name) && e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				core.LogDebug("Change detected: %s", e)
				fire = time.After(w.Debounce)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return nil
			}
			core.LogError(err.Error())

		case <-fire:
			fire = nil
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	res, err := RunBatch(ctx, w.cfg, w.runner)
	if err != nil && !res.Interrupted {
		core.LogError("Shader batch failed: %v", err)
	}
	if w.OnBatch != nil {
		w.OnBatch(res, err)
	}
}

// watchRecursive adds path and every directory below it to the watch list.
// Symlinked directories are followed like Discover does, each resolved
// directory is watched once.
func (w *Watcher) watchRecursive(path string) error {
	return w.watchDir(filepath.Clean(path), make(map[string]struct{}))
}

func (w *Watcher) watchDir(dir string, visited map[string]struct{}) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return eris.Wrapf(err, "unable to resolve %s", dir)
	}
	if _, seen := visited[resolved]; seen {
		return nil
	}
	visited[resolved] = struct{}{}

	if err := w.fsnotify.Add(dir); err != nil {
		return eris.Wrapf(err, "unable to watch %s", dir)
	}
	w.dirs[dir] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return eris.Wrapf(err, "unable to list %s", dir)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(path); err == nil {
				isDir = target.IsDir()
			}
		}
		if !isDir {
			continue
		}
		if err := w.watchDir(path, visited); err != nil {
			return err
		}
	}
	return nil
}

// forget drops a removed or renamed directory and everything below it from
// the watch list. It reports whether path was a watched directory.
func (w *Watcher) forget(path string) bool {
	path = filepath.Clean(path)
	if _, ok := w.dirs[path]; !ok {
		return false
	}
	prefix := path + string(filepath.Separator)
	for dir := range w.dirs {
		if dir == path || strings.HasPrefix(dir, prefix) {
			// inotify drops deleted directories by itself
			_ = w.fsnotify.Remove(dir)
			delete(w.dirs, dir)
		}
	}
	return true
}
