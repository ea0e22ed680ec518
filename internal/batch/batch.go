// Package batch walks a directory tree and resizes every matching image in it
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/UnendingLoop/ImageResizer/internal/model"
	"github.com/UnendingLoop/ImageResizer/internal/runlog"
	"golang.org/x/sync/errgroup"
)

// FileProcessor - контракт сервиса, который обрабатывает один файл
type FileProcessor interface {
	PrepareDir(ctx context.Context, dir string) error
	ResizeFile(ctx context.Context, task model.FileTask) model.Result
}

type Options struct {
	// Workers limits how many files are processed at once. Values below 1 mean 1.
	Workers int
	// PreserveTree mirrors the input directory structure in the output.
	// Without it every file lands directly in the output directory and
	// files sharing a basename overwrite each other.
	PreserveTree bool
	// OnResult is called once per file as soon as its result is known.
	// Calls are serialized.
	OnResult func(model.Result)
}

type Walker struct {
	proc FileProcessor
	opts Options
}

func NewWalker(proc FileProcessor, opts Options) *Walker {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Walker{proc: proc, opts: opts}
}

// Report holds per-file results in traversal order.
type Report struct {
	Results   []model.Result
	Processed int
	Failed    int
	Skipped   int
}

func (r *Report) add(res model.Result) {
	switch res.Status {
	case model.StatusDone:
		r.Processed++
	case model.StatusFailed:
		r.Failed++
	case model.StatusSkipped:
		r.Skipped++
	}
}

// Collect lists resize tasks for every matching file under inputDir.
// Unreadable subdirectories are logged and skipped.
func (w *Walker) Collect(ctx context.Context, inputDir, outputDir string, width, height int) ([]model.FileTask, error) {
	logger := runlog.FromContext(ctx)

	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, model.ErrNotADirectory
	}

	var tasks []model.FileTask
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == inputDir {
				return err
			}
			logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !model.IsBatchCandidate(d.Name()) {
			return nil
		}

		dst := filepath.Join(outputDir, d.Name())
		if w.opts.PreserveTree {
			rel, err := filepath.Rel(inputDir, path)
			if err != nil {
				return err
			}
			dst = filepath.Join(outputDir, rel)
		}

		tasks = append(tasks, model.FileTask{
			Operation:   model.OpResize,
			Source:      path,
			Destination: dst,
			Width:       width,
			Height:      height,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// Run resizes every matching file under inputDir into outputDir. Per-file
// failures end up in the report and never stop the run; an error is returned
// only when the output directory cannot be created or inputDir cannot be read.
func (w *Walker) Run(ctx context.Context, inputDir, outputDir string, width, height int) (*Report, error) {
	logger := runlog.FromContext(ctx)

	if err := w.proc.PrepareDir(ctx, outputDir); err != nil {
		return nil, &model.OperationError{Op: model.OpResize, Path: outputDir, Err: err}
	}

	tasks, err := w.Collect(ctx, inputDir, outputDir, width, height)
	if err != nil {
		return nil, &model.OperationError{Op: model.OpResize, Path: inputDir, Err: err}
	}

	logger.Info().
		Int("files", len(tasks)).
		Int("workers", w.opts.Workers).
		Str("input", inputDir).
		Str("output", outputDir).
		Msg("Batch started")

	results := make([]model.Result, len(tasks))
	var mu sync.Mutex
	report := func(i int, res model.Result) {
		results[i] = res
		if w.opts.OnResult == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		w.opts.OnResult(res)
	}

	var g errgroup.Group
	g.SetLimit(w.opts.Workers)

	skip := func(i int, task model.FileTask) {
		report(i, model.Result{Task: task, Status: model.StatusSkipped, Err: ctx.Err()})
	}

	for i, task := range tasks {
		if ctx.Err() != nil {
			skip(i, task)
			continue
		}
		i, task := i, task
		g.Go(func() error {
			// отмена могла прийти пока ждали свободный слот
			if ctx.Err() != nil {
				skip(i, task)
				return nil
			}
			report(i, w.proc.ResizeFile(ctx, task))
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{Results: results}
	for _, res := range results {
		rep.add(res)
	}

	logger.Info().
		Int("processed", rep.Processed).
		Int("failed", rep.Failed).
		Int("skipped", rep.Skipped).
		Msg("Batch finished")

	return rep, nil
}

// Summary renders the final status line of a run.
func (r *Report) Summary() string {
	s := fmt.Sprintf("Batch finished: %d resized, %d failed", r.Processed, r.Failed)
	if r.Skipped > 0 {
		s += fmt.Sprintf(", %d skipped", r.Skipped)
	}
	return s
}
