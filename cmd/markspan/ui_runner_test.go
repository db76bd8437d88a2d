//go:build unix

package main

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"markspan/internal/driver"
	"markspan/internal/source"
)

// An interrupt during a progress-view run must cancel the workers and must
// not leave them blocked on progress events nobody reads.
func TestRunDirWithUIInterrupt(t *testing.T) {
	const events = 2000 // well past the channel buffer

	sawCancel := make(chan bool, 1)
	run := func(ctx context.Context, dir string, opts driver.Options) (*source.FileSet, []driver.FileResult, error) {
		select {
		case <-ctx.Done():
			sawCancel <- true
		case <-time.After(3 * time.Second):
			sawCancel <- false
		}
		for range events {
			opts.Progress.OnEvent(driver.Event{File: "a.go", Stage: driver.StageParse, Status: driver.StatusWorking})
		}
		return source.NewFileSet(), nil, ctx.Err()
	}

	done := make(chan error, 1)
	go func() {
		_, _, err := runDirWithUI(context.Background(), "split", t.TempDir(), driver.Options{}, run)
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("runDirWithUI() error = %v, want context.Canceled", err)
		}
		if !<-sawCancel {
			t.Error("interrupt did not cancel the run context")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runDirWithUI did not return after an interrupt")
	}
}

func TestRunDirWithUIDrainsAfterViewExit(t *testing.T) {
	run := func(ctx context.Context, dir string, opts driver.Options) (*source.FileSet, []driver.FileResult, error) {
		for range 1000 {
			opts.Progress.OnEvent(driver.Event{File: "a.go", Status: driver.StatusQueued})
		}
		return source.NewFileSet(), []driver.FileResult{{Path: "a.go"}}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, results, err := runDirWithUI(context.Background(), "split", t.TempDir(), driver.Options{}, run)
		if err == nil && len(results) != 1 {
			err = errors.New("results lost")
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runDirWithUI() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runDirWithUI did not return")
	}
}
