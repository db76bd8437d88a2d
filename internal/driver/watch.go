package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"markspan/internal/config"
	"markspan/internal/trace"
)

// DefaultDebounce is how long a path must stay quiet before it is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports marker files that changed under a file or directory.
type Watcher struct {
	root     string
	file     string // non-empty when root names a single file
	sel      config.Files
	debounce time.Duration
	fsw      *fsnotify.Watcher
	pending  map[string]time.Time
}

// NewWatcher watches path: a single marker file or a directory tree.
// Directories created later are picked up as they appear.
func NewWatcher(path string, sel config.Files, debounce time.Duration) (*Watcher, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     filepath.Clean(path),
		sel:      sel,
		debounce: debounce,
		fsw:      fsw,
		pending:  make(map[string]time.Time),
	}
	if st.IsDir() {
		err = w.addTree(w.root)
	} else {
		// редакторы часто пишут через rename, поэтому следим за каталогом
		w.file = w.root
		err = fsw.Add(filepath.Dir(w.root))
	}
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata"
}

// Run delivers settled changes to onChange until ctx is done. Paths in one
// call are sorted; a path that keeps changing is held back until it settles.
// Run closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer w.fsw.Close()

	tracer := trace.FromContext(ctx)
	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				trace.Point(tracer, trace.ScopeDriver, "watch-overflow", err.Error(), trace.CurrentSpan(ctx).SpanID)
				continue
			}
			return err
		case now := <-tick.C:
			if settled := w.settled(now); len(settled) > 0 {
				trace.Point(tracer, trace.ScopeDriver, "watch", strings.Join(settled, ","), trace.CurrentSpan(ctx).SpanID)
				onChange(settled)
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	path := filepath.Clean(ev.Name)
	if w.file != "" {
		if path == w.file {
			w.pending[path] = time.Now()
		}
		return
	}
	if ev.Op&fsnotify.Create != 0 {
		if st, err := os.Stat(path); err == nil && st.IsDir() {
			if !skipDir(filepath.Base(path)) {
				_ = w.addTree(path) //nolint:errcheck // best effort, dir may vanish again
			}
			return
		}
	}
	if w.sel.Selects(filepath.Base(path)) {
		w.pending[path] = time.Now()
	}
}

func (w *Watcher) settled(now time.Time) []string {
	var out []string
	for path, at := range w.pending {
		if now.Sub(at) < w.debounce {
			continue
		}
		delete(w.pending, path)
		// переименованный или удалённый файл не перечитываем
		if _, err := os.Stat(path); err != nil {
			continue
		}
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
