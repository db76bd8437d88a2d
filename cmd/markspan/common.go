package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"markspan/internal/config"
	"markspan/internal/diag"
	"markspan/internal/diagfmt"
	"markspan/internal/driver"
	"markspan/internal/observ"
	"markspan/internal/source"
)

// globalFlags собирает persistent-флаги корневой команды.
type globalFlags struct {
	color          string
	quiet          bool
	timings        bool
	maxDiagnostics int
	configPath     string
	jobs           int
	ui             uiMode
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	pf := cmd.Root().PersistentFlags()
	var g globalFlags
	var err error
	if g.color, err = pf.GetString("color"); err != nil {
		return g, fmt.Errorf("failed to get color flag: %w", err)
	}
	if g.quiet, err = pf.GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = pf.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
		return g, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if g.configPath, err = pf.GetString("config"); err != nil {
		return g, fmt.Errorf("failed to get config flag: %w", err)
	}
	if g.jobs, err = pf.GetInt("jobs"); err != nil {
		return g, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := pf.GetString("ui")
	if err != nil {
		return g, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if g.ui, err = readUIMode(uiFlag); err != nil {
		return g, err
	}
	switch g.color {
	case "auto", "on", "off":
	default:
		return g, fmt.Errorf("unknown color mode %q (must be auto, on or off)", g.color)
	}
	return g, nil
}

// useColor решает, красить ли вывод в w.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// session is the per-invocation state shared by split and reconstruct.
type session struct {
	cmd    *cobra.Command
	flags  globalFlags
	opts   driver.Options
	stdout io.Writer
	stderr io.Writer
}

func newSession(cmd *cobra.Command) (*session, error) {
	g, err := readGlobalFlags(cmd)
	if err != nil {
		return nil, err
	}
	s := &session{
		cmd:    cmd,
		flags:  g,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}
	s.opts = driver.Options{
		Config:         cfg,
		MaxDiagnostics: g.maxDiagnostics,
		Jobs:           g.jobs,
	}
	if g.timings {
		s.opts.Timer = observ.NewTimer()
	}
	return s, nil
}

// loadConfig reads --config or the nearest markspan.toml. An invalid file
// is reported as a diagnostic anchored at the file itself.
func (s *session) loadConfig() (config.Config, error) {
	path := s.flags.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return config.Config{}, err
		}
		found, ok, err := config.Find(wd)
		if err != nil {
			return config.Config{}, err
		}
		if !ok {
			return config.Default(), nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}

	fs := source.NewFileSet()
	id, loadErr := fs.Load(path)
	if loadErr != nil {
		id = fs.AddVirtual(path, nil)
	}
	bag := diag.NewBag(1)
	msg := strings.TrimPrefix(err.Error(), path+": ")
	bag.Add(diag.NewError(diag.ProjConfigInvalid, source.At(id, 0), msg))
	s.printDiagnostics(bag, fs, "pretty")
	return config.Config{}, errFailed
}

// printDiagnostics пишет диагностики в stderr в выбранном виде.
func (s *session) printDiagnostics(bag *diag.Bag, fs *source.FileSet, format string) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	switch {
	case format == "json":
		if err := diagfmt.JSON(s.stderr, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			Max:              s.flags.maxDiagnostics,
		}); err != nil {
			fmt.Fprintf(s.stderr, "diagnostics: %v\n", err)
		}
	case s.flags.quiet:
		fmt.Fprintln(s.stderr, diag.FormatShortDiagnostics(bag.Items(), fs, false))
	default:
		diagfmt.Pretty(s.stderr, bag, fs, diagfmt.PrettyOpts{
			Color:     useColor(s.flags.color, s.stderr),
			Context:   1,
			ShowNotes: true,
		})
	}
}

// noMarkerFiles warns about a directory without marker files.
func (s *session) noMarkerFiles(dir string, format string) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(dir, nil)
	bag := diag.NewBag(1)
	bag.Add(diag.NewWarning(diag.ProjNoMarkerFiles, source.At(id, 0),
		"no marker files matching "+strings.Join(s.opts.Config.Files.Include, ", ")))
	s.printDiagnostics(bag, fs, format)
}

// finish prints timings and turns reported errors into a non-zero exit.
func (s *session) finish(results []driver.FileResult) error {
	if s.opts.Timer != nil {
		fmt.Fprint(s.stderr, s.opts.Timer.Summary())
	}
	for i := range results {
		if results[i].Failed() {
			return errFailed
		}
	}
	return nil
}

// isDir reports whether path names a directory.
func isDir(path string) (bool, error) {
	st, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat path: %w", err)
	}
	return st.IsDir(), nil
}

// header печатает заголовок файла при обработке директории.
func (s *session) header(res *driver.FileResult, fs *source.FileSet, idx int) {
	if s.flags.quiet {
		return
	}
	if idx > 0 {
		fmt.Fprintln(s.stdout)
	}
	fmt.Fprintf(s.stdout, "== %s ==\n", res.File.DisplayPath(fs.BaseDir()))
}
