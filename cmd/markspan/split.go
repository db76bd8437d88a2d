package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"markspan/internal/diagfmt"
	"markspan/internal/driver"
	"markspan/internal/source"
)

func newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split [flags] <file.go|directory>",
		Short: "Group the units of a marker file into chunks",
		Long:  `Split walks the top-level units of a marker file and groups the code before each assertion into a chunk`,
		Args:  cobra.ExactArgs(1),
		RunE:  runSplit,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Bool("watch", false, "re-run on every change until interrupted")
	return cmd
}

func runSplit(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
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

	dir, err := isDir(args[0])
	if err != nil {
		return err
	}

	var (
		fs      *source.FileSet
		results []driver.FileResult
	)
	if dir {
		fs, results, err = s.runDir("split "+args[0], args[0], driver.SplitDir)
		if err != nil {
			return fmt.Errorf("split failed: %w", err)
		}
		if len(results) == 0 {
			s.noMarkerFiles(args[0], format)
		}
	} else {
		fs, results, err = s.runFile(args[0], driver.Split)
		if err != nil {
			return fmt.Errorf("split failed: %w", err)
		}
	}
	if err := s.emitChunks(fs, results, format, dir); err != nil {
		return err
	}
	runErr := s.finish(results)

	if watch {
		return s.watch(args[0], func(fs *source.FileSet, results []driver.FileResult) error {
			return s.emitChunks(fs, results, format, false)
		}, driver.Split)
	}
	return runErr
}

func (s *session) emitChunks(fs *source.FileSet, results []driver.FileResult, format string, dir bool) error {
	for i := range results {
		s.printDiagnostics(results[i].Bag, fs, format)
	}

	if format == "json" {
		outputs := make([]diagfmt.ChunksOutput, 0, len(results))
		for i := range results {
			if results[i].Chunks != nil {
				outputs = append(outputs, diagfmt.BuildChunksOutput(*results[i].Chunks, results[i].File, fs))
			}
		}
		return writeJSON(s, outputs, dir)
	}

	for i := range results {
		r := &results[i]
		if dir {
			s.header(r, fs, i)
		}
		if r.Chunks == nil {
			continue
		}
		if err := diagfmt.FormatChunksPretty(s.stdout, *r.Chunks, r.File, fs); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON пишет один объект для файла и массив для директории.
func writeJSON[T any](s *session, outputs []T, dir bool) error {
	enc := json.NewEncoder(s.stdout)
	enc.SetIndent("", "  ")
	if dir {
		return enc.Encode(outputs)
	}
	if len(outputs) == 0 {
		return nil
	}
	return enc.Encode(outputs[0])
}
