package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"markspan/internal/driver"
	"markspan/internal/source"
)

type fileRunner func(ctx context.Context, path string, opts driver.Options) (*source.FileSet, *driver.FileResult, error)

// runFile runs a single-file pass and wraps its result like a directory run.
func (s *session) runFile(path string, run fileRunner) (*source.FileSet, []driver.FileResult, error) {
	fs, res, err := run(s.cmd.Context(), path, s.opts)
	if err != nil {
		return nil, nil, err
	}
	return fs, []driver.FileResult{*res}, nil
}

// watch re-runs changed files until the process is interrupted.
func (s *session) watch(path string, emit func(*source.FileSet, []driver.FileResult) error, run fileRunner) error {
	w, err := driver.NewWatcher(path, s.opts.Config.Files, driver.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	ctx, stop := signal.NotifyContext(s.cmd.Context(), os.Interrupt)
	defer stop()

	if !s.flags.quiet {
		fmt.Fprintf(s.stderr, "watching %s (ctrl-c to stop)\n", path)
	}
	var emitErr error
	err = w.Run(ctx, func(paths []string) {
		for _, p := range paths {
			fs, results, err := s.runFile(p, run)
			if err != nil {
				fmt.Fprintf(s.stderr, "%s: %v\n", p, err)
				continue
			}
			if !s.flags.quiet {
				fmt.Fprintf(s.stdout, "== %s ==\n", p)
			}
			if err := emit(fs, results); err != nil && emitErr == nil {
				emitErr = err
				stop()
			}
			if s.opts.Timer != nil {
				fmt.Fprint(s.stderr, s.opts.Timer.Summary())
			}
		}
	})
	if err != nil {
		return err
	}
	return emitErr
}
