// Package driver runs the markspan passes over files and directories.
//
// A file goes through load, parse, a marker pass that only collects warnings,
// and then either split or reconstruct. Every failure ends up as a diagnostic
// in the file's Bag; only setup problems (bad marker names, a cancelled
// context) are returned as errors.
package driver

import (
	"context"
	"fmt"

	"markspan/internal/chunk"
	"markspan/internal/config"
	"markspan/internal/diag"
	"markspan/internal/marker"
	"markspan/internal/observ"
	"markspan/internal/reconstruct"
	"markspan/internal/render"
	"markspan/internal/source"
	"markspan/internal/trace"
	"markspan/internal/unit"
)

// Mode selects the final pass.
type Mode uint8

const (
	ModeSplit Mode = iota + 1
	ModeReconstruct
)

func (m Mode) String() string {
	switch m {
	case ModeSplit:
		return "split"
	case ModeReconstruct:
		return "reconstruct"
	default:
		return "unknown"
	}
}

// Options configure a run.
type Options struct {
	Config         config.Config
	MaxDiagnostics int
	Jobs           int           // <= 0 uses GOMAXPROCS
	Cache          *DiskCache    // nil disables caching
	Timer          *observ.Timer // nil disables timings
	Progress       ProgressSink  // nil disables progress events
	// Check prints reconstructed blocks back and reports files whose
	// printed form differs from the source.
	Check bool
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path   string
	File   *source.File
	Bag    *diag.Bag
	Chunks *chunk.Result       // ModeSplit
	Blocks []reconstruct.Block // ModeReconstruct
	Cached bool                // Blocks came from the disk cache
	Diff   string              // Check only; "" when the round trip holds
}

// Failed reports whether the file produced errors.
func (r *FileResult) Failed() bool {
	return r.Bag.HasErrors()
}

type pipeline struct {
	opts   Options
	rec    *marker.Recognizer
	render marker.RenderFunc
	fp     string
}

func newPipeline(opts Options) (*pipeline, error) {
	rec, err := marker.NewRecognizer(opts.Config.Markers)
	if err != nil {
		return nil, fmt.Errorf("marker names: %w", err)
	}
	return &pipeline{
		opts:   opts,
		rec:    rec,
		render: render.New(opts.Config.Render),
		fp:     opts.Config.Fingerprint(),
	}, nil
}

// Split loads path and groups its units into chunks.
func Split(ctx context.Context, path string, opts Options) (*source.FileSet, *FileResult, error) {
	return runOne(ctx, path, ModeSplit, opts)
}

// Reconstruct loads path and partitions it into blocks.
func Reconstruct(ctx context.Context, path string, opts Options) (*source.FileSet, *FileResult, error) {
	return runOne(ctx, path, ModeReconstruct, opts)
}

func runOne(ctx context.Context, path string, mode Mode, opts Options) (*source.FileSet, *FileResult, error) {
	p, err := newPipeline(opts)
	if err != nil {
		return nil, nil, err
	}
	fs := source.NewFileSet()
	sw := opts.Timer.Begin("load")
	file, loadErr := loadFile(fs, path)
	sw.End("")
	res, err := p.run(ctx, file, loadErr, mode)
	return fs, res, err
}

// loadFile reads path into fs. A file that cannot be read is registered as
// an empty virtual file so its diagnostics still have a path to point at.
func loadFile(fs *source.FileSet, path string) (*source.File, error) {
	id, err := fs.Load(path)
	if err != nil {
		return fs.Get(fs.AddVirtual(path, nil)), err
	}
	return fs.Get(id), nil
}

func (p *pipeline) run(ctx context.Context, file *source.File, loadErr error, mode Mode) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	fileSpan := trace.Begin(tracer, trace.ScopeFile, "file:"+file.Path, trace.CurrentSpan(ctx).SpanID)
	parent := fileSpan.ID()

	res := &FileResult{Path: file.Path, File: file, Bag: diag.NewBag(p.opts.MaxDiagnostics)}
	defer func() {
		status := StatusDone
		if res.Failed() {
			status = StatusError
			fileSpan.WithExtra("diagnostics", fmt.Sprint(res.Bag.Len())).Fail(fmt.Errorf("%s failed", mode))
		}
		p.progress(file.Path, "", status)
		fileSpan.End(mode.String())
	}()

	if loadErr != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, source.At(file.ID, 0), "failed to load file: "+loadErr.Error()))
		return res, nil
	}

	var units []unit.Unit
	err := p.pass(tracer, parent, file.Path, "parse", func() (err error) {
		units, err = unit.Parse(file)
		return err
	})
	if err != nil {
		p.addError(res, err)
		return res, nil
	}

	p.checkMarkers(tracer, parent, file.Path, units, res.Bag)

	switch mode {
	case ModeSplit:
		p.split(tracer, parent, file, units, res)
	case ModeReconstruct:
		p.reconstruct(tracer, parent, file, units, res)
	}
	return res, nil
}

// pass runs fn inside a trace span and a timer phase.
func (p *pipeline) pass(t trace.Tracer, parent uint64, path, name string, fn func() error) error {
	p.progress(path, Stage(name), StatusWorking)
	span := trace.Begin(t, trace.ScopePass, name, parent)
	sw := p.opts.Timer.Begin(name)
	err := fn()
	sw.End("")
	span.Fail(err).End("")
	return err
}

func (p *pipeline) addError(res *FileResult, err error) {
	for _, d := range diag.FromError(err, res.File) {
		res.Bag.Add(d)
	}
}

// checkMarkers reports marker-shaped calls nested in ordinary code and part
// labels that repeat the part already in effect. Classification errors are
// left to the final pass, which reports them with its own context.
func (p *pipeline) checkMarkers(t trace.Tracer, parent uint64, path string, units []unit.Unit, bag *diag.Bag) {
	r := diag.BagReporter{Bag: bag}
	var (
		part    string
		partSet bool
	)
	_ = p.pass(t, parent, path, "markers", func() error { //nolint:errcheck // never fails
		for _, u := range units {
			m, err := p.rec.Classify(u)
			if err != nil {
				continue
			}
			switch m.Kind {
			case marker.KindNone:
				for _, n := range p.rec.Nested(u) {
					trace.Point(t, trace.ScopeUnit, "nested:"+n.Name, n.Span.String(), parent)
					diag.ReportWarning(r, diag.MarkNestedIgnored, n.Span,
						fmt.Sprintf("%s inside %s is not a marker; markers must be top-level declarations", n.Name, u.Label())).
						Emit()
				}
			case marker.KindPartLabel:
				if partSet && m.Name == part {
					diag.ReportWarning(r, diag.MarkRedeclaredPart, m.Span,
						fmt.Sprintf("part %q is already in effect", m.Name)).
						Emit()
				}
				part, partSet = m.Name, true
			}
		}
		return nil
	})
}

func (p *pipeline) split(t trace.Tracer, parent uint64, file *source.File, units []unit.Unit, res *FileResult) {
	var out chunk.Result
	err := p.pass(t, parent, file.Path, "split", func() (err error) {
		out, err = chunk.Split(units, source.At(file.ID, 0), p.rec, p.render)
		return err
	})
	if err != nil {
		p.addError(res, err)
		return
	}
	res.Chunks = &out
	if lo := out.Leftover; lo != nil {
		res.Bag.Add(diag.New(diag.SevInfo, diag.MarkLeftoverCode, lo.Span,
			fmt.Sprintf("%d declaration(s) after the last assertion are not checked", len(lo.Units))))
	}
}

func (p *pipeline) reconstruct(t trace.Tracer, parent uint64, file *source.File, units []unit.Unit, res *FileResult) {
	key := CacheKey(file.Content, p.fp)
	if p.opts.Cache != nil {
		var payload DiskPayload
		ok, err := p.opts.Cache.Get(key, &payload)
		switch {
		case err != nil:
			res.Bag.Add(diag.NewWarning(diag.IOCacheError, source.At(file.ID, 0), "result cache: "+err.Error()))
		case ok:
			if blocks, valid := payload.blocks(file); valid {
				res.Blocks, res.Cached = blocks, true
				trace.Point(t, trace.ScopePass, "cache-hit", file.Path, parent)
			}
		}
	}

	if !res.Cached {
		var blocks []reconstruct.Block
		err := p.pass(t, parent, file.Path, "reconstruct", func() (err error) {
			blocks, err = reconstruct.Reconstruct(units, file, p.rec, p.render)
			return err
		})
		if err != nil {
			p.addError(res, err)
			return
		}
		res.Blocks = blocks
		if p.opts.Cache != nil {
			if err := p.opts.Cache.Put(key, newDiskPayload(blocks, file)); err != nil {
				res.Bag.Add(diag.NewWarning(diag.IOCacheError, source.At(file.ID, 0), "result cache: "+err.Error()))
			}
		}
	}

	if p.opts.Check {
		_ = p.pass(t, parent, file.Path, "check", func() error { //nolint:errcheck // reported below
			res.Diff = roundTrip(res.Blocks, file, p.opts.Config.Markers)
			return nil
		})
		if res.Diff != "" {
			res.Bag.Add(diag.NewError(diag.SpanNotRoundTrip, source.At(file.ID, 0),
				"printed blocks differ from the source"))
		}
	}
}
