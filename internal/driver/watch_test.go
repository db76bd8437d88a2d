package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"markspan/internal/config"
)

func runWatcher(t *testing.T, w *Watcher) (<-chan []string, context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) { changes <- paths })
	}()
	return changes, cancel, done
}

func waitChange(t *testing.T, changes <-chan []string) []string {
	t.Helper()
	select {
	case paths := <-changes:
		return paths
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
		return nil
	}
}

func TestWatcherDirectory(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, config.Default().Files, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	changes, cancel, done := runWatcher(t, w)

	// test files and other extensions are not marker files
	writeFile(t, dir, "skip_test.go", "package a\n")
	writeFile(t, dir, "notes.md", "# notes\n")
	path := writeFile(t, dir, "a.go", "package a\n")

	got := waitChange(t, changes)
	if len(got) != 1 || got[0] != filepath.Clean(path) {
		t.Errorf("changes = %v, want [%s]", got, path)
	}

	// a directory created after start is watched too
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	nested := writeFile(t, dir, "sub/b.go", "package b\n")
	got = waitChange(t, changes)
	if len(got) != 1 || got[0] != filepath.Clean(nested) {
		t.Errorf("changes = %v, want [%s]", got, nested)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestWatcherSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\n")
	w, err := NewWatcher(path, config.Default().Files, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	changes, cancel, done := runWatcher(t, w)

	writeFile(t, dir, "other.go", "package a\n")
	writeFile(t, dir, "a.go", "package a\n\nfunc f() {}\n")

	got := waitChange(t, changes)
	if len(got) != 1 || got[0] != filepath.Clean(path) {
		t.Errorf("changes = %v, want [%s]", got, path)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNewWatcherMissingPath(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "nope"), config.Default().Files, 0); err == nil {
		t.Fatal("expected error for missing path")
	}
}
