package main

import (
	"context"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"markspan/internal/driver"
	"markspan/internal/source"
	"markspan/internal/ui"
)

type dirRunner func(ctx context.Context, dir string, opts driver.Options) (*source.FileSet, []driver.FileResult, error)

type dirOutcome struct {
	fs      *source.FileSet
	results []driver.FileResult
	err     error
}

// runDirWithUI runs a directory pass while a progress view follows its events.
// An interrupt closes the view and cancels the pass.
func runDirWithUI(ctx context.Context, title, dir string, opts driver.Options, run dirRunner) (*source.FileSet, []driver.FileResult, error) {
	// bubbletea перехватывает SIGINT сам, поэтому воркерам нужен свой сигнал
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		fs, results, err := run(ctx, dir, opts)
		outcomeCh <- dirOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	_, uiErr := program.Run()
	// view закрыт (штатно, по ошибке или по ctrl-c): дочитываем события,
	// чтобы воркеры не встали на полном канале
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}

// runDir picks the plain or the progress-view directory run.
func (s *session) runDir(title, dir string, run dirRunner) (*source.FileSet, []driver.FileResult, error) {
	if s.flags.ui.progressView(s.flags.quiet) {
		return runDirWithUI(s.cmd.Context(), title, dir, s.opts, run)
	}
	return run(s.cmd.Context(), dir, s.opts)
}
