package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"markspan/internal/diagfmt"
	"markspan/internal/driver"
	"markspan/internal/printer"
	"markspan/internal/source"
)

func newReconstructCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconstruct [flags] <file.go|directory>",
		Short: "Partition a marker file into code, directive and assertion blocks",
		Long: `Reconstruct recovers the comments and blank lines the parser drops and
partitions the whole file into an ordered list of blocks`,
		Args: cobra.ExactArgs(1),
		RunE: runReconstruct,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|source)")
	cmd.Flags().Bool("check", false, "print the blocks back and fail when the result is not stable")
	cmd.Flags().Bool("no-cache", false, "bypass the on-disk result cache")
	cmd.Flags().Bool("watch", false, "re-run on every change until interrupted")
	return cmd
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "source":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return fmt.Errorf("failed to get check flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get watch flag: %w", err)
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	s.opts.Check = check
	if s.opts.Config.Cache.Enabled && !noCache {
		cache, cacheErr := driver.OpenDiskCache("markspan", s.opts.Config.Cache.Dir)
		if cacheErr != nil {
			// кэш необязателен, продолжаем без него
			if !s.flags.quiet {
				fmt.Fprintf(s.stderr, "cache disabled: %v\n", cacheErr)
			}
		} else {
			s.opts.Cache = cache
		}
	}

	dir, err := isDir(args[0])
	if err != nil {
		return err
	}

	var (
		fs      *source.FileSet
		results []driver.FileResult
	)
	if dir {
		fs, results, err = s.runDir("reconstruct "+args[0], args[0], driver.ReconstructDir)
		if err != nil {
			return fmt.Errorf("reconstruct failed: %w", err)
		}
		if len(results) == 0 {
			s.noMarkerFiles(args[0], format)
		}
	} else {
		fs, results, err = s.runFile(args[0], driver.Reconstruct)
		if err != nil {
			return fmt.Errorf("reconstruct failed: %w", err)
		}
	}
	if err := s.emitBlocks(fs, results, format, dir); err != nil {
		return err
	}
	runErr := s.finish(results)

	if watch {
		return s.watch(args[0], func(fs *source.FileSet, results []driver.FileResult) error {
			return s.emitBlocks(fs, results, format, false)
		}, driver.Reconstruct)
	}
	return runErr
}

func (s *session) emitBlocks(fs *source.FileSet, results []driver.FileResult, format string, dir bool) error {
	for i := range results {
		s.printDiagnostics(results[i].Bag, fs, format)
	}

	if format == "json" {
		outputs := make([]diagfmt.BlocksOutput, 0, len(results))
		for i := range results {
			if !results[i].Failed() {
				outputs = append(outputs, diagfmt.BuildBlocksOutput(results[i].Blocks, results[i].File, fs))
			}
		}
		return writeJSON(s, outputs, dir)
	}

	for i := range results {
		r := &results[i]
		if dir {
			s.header(r, fs, i)
		}
		if r.Failed() && r.Diff == "" {
			continue
		}
		var err error
		switch format {
		case "source":
			err = printer.Print(s.stdout, r.Blocks, s.opts.Config.Markers)
		default:
			err = diagfmt.FormatBlocksPretty(s.stdout, r.Blocks, r.File, fs)
		}
		if err != nil {
			return err
		}
		if r.Diff != "" {
			fmt.Fprintf(s.stdout, "--- %s (round trip)\n%s", r.File.DisplayPath(fs.BaseDir()), r.Diff)
		}
	}
	return nil
}
