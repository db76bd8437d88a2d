package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"markspan/internal/config"
	"markspan/internal/source"
	"markspan/internal/trace"
)

// ListMarkerFiles возвращает отсортированный список marker-файлов в директории.
// Скрытые каталоги, vendor и testdata пропускаются.
func ListMarkerFiles(dir string, sel config.Files) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if sel.Selects(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// SplitDir splits every marker file under dir in parallel.
func SplitDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []FileResult, error) {
	return runDir(ctx, dir, ModeSplit, opts)
}

// ReconstructDir reconstructs every marker file under dir in parallel.
func ReconstructDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []FileResult, error) {
	return runDir(ctx, dir, ModeReconstruct, opts)
}

func runDir(ctx context.Context, dir string, mode Mode, opts Options) (*source.FileSet, []FileResult, error) {
	p, err := newPipeline(opts)
	if err != nil {
		return nil, nil, err
	}

	ctx, span := trace.BeginIn(ctx, trace.ScopeDriver, mode.String()+"-dir")
	defer span.End(dir)

	files, err := ListMarkerFiles(dir, opts.Config.Files)
	if err != nil {
		span.Fail(err)
		return nil, nil, err
	}
	span.WithExtra("files", strconv.Itoa(len(files)))

	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// Предзагружаем последовательно: FileID не зависят от планировщика
	loaded := make([]*source.File, len(files))
	loadErrors := make([]error, len(files))
	sw := opts.Timer.Begin("load")
	for i, path := range files {
		loaded[i], loadErrors[i] = loadFile(fileSet, path)
		p.progress(loaded[i].Path, "", StatusQueued)
	}
	sw.End(strconv.Itoa(len(files)) + " files")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i := range files {
		g.Go(func() error {
			res, err := p.run(gctx, loaded[i], loadErrors[i], mode)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.Fail(err)
		return fileSet, results, err
	}
	return fileSet, results, nil
}
