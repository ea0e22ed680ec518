// Package service provides per-file image operations for the app
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/UnendingLoop/ImageResizer/internal/config"
	"github.com/UnendingLoop/ImageResizer/internal/imageproc"
	"github.com/UnendingLoop/ImageResizer/internal/model"
	"github.com/UnendingLoop/ImageResizer/internal/runlog"
	"github.com/disintegration/imaging"
)

// ImageStorage - контракт для работы с хранилищем результатов
type ImageStorage interface {
	MakeDir(ctx context.Context, dir string) error
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

type ImageService struct {
	storage      ImageStorage
	filter       imaging.ResampleFilter
	jpegQuality  int
	webpQuality  float32
	webpLossless bool
}

func NewImageService(strg ImageStorage, enc config.Encoding) (*ImageService, error) {
	if strg == nil {
		return nil, errors.New("nil storage provided to ImageService")
	}

	filter, err := imageproc.FilterFromName(enc.Filter)
	if err != nil {
		return nil, err
	}

	return &ImageService{
		storage:      strg,
		filter:       filter,
		jpegQuality:  enc.JPEGQuality,
		webpQuality:  enc.WebPQuality,
		webpLossless: enc.WebPLossless,
	}, nil
}

type operation func(r io.Reader, opts imageproc.Options) (io.Reader, int64, error)

// PrepareDir makes sure the output directory exists.
func (s *ImageService) PrepareDir(ctx context.Context, dir string) error {
	return s.storage.MakeDir(ctx, dir)
}

// Process dispatches task by its operation.
func (s *ImageService) Process(ctx context.Context, task model.FileTask) model.Result {
	switch task.Operation {
	case model.OpResize:
		return s.ResizeFile(ctx, task)
	case model.OpConvert:
		return s.ConvertFile(ctx, task)
	case model.OpThumbNail:
		return s.ThumbnailFile(ctx, task)
	default:
		return s.fail(ctx, task, model.ErrIncorrectOp)
	}
}

// ResizeFile resamples task.Source to exactly Width x Height. The output
// format follows the destination extension.
func (s *ImageService) ResizeFile(ctx context.Context, task model.FileTask) model.Result {
	task.Operation = model.OpResize
	format, err := imageproc.FormatFromFilename(task.Destination)
	if err != nil {
		return s.fail(ctx, task, err)
	}

	return s.run(ctx, task, format, func(r io.Reader, opts imageproc.Options) (io.Reader, int64, error) {
		return imageproc.Resize(r, task.Width, task.Height, opts)
	})
}

// ConvertFile re-encodes task.Source in task.Format, dimensions untouched.
func (s *ImageService) ConvertFile(ctx context.Context, task model.FileTask) model.Result {
	task.Operation = model.OpConvert
	task.Format = strings.ToUpper(strings.TrimSpace(task.Format))
	format, err := imageproc.FormatFromName(task.Format)
	if err != nil {
		return s.fail(ctx, task, err)
	}

	return s.run(ctx, task, format, imageproc.Convert)
}

// ThumbnailFile fill-crops task.Source to Width x Height around the centre.
func (s *ImageService) ThumbnailFile(ctx context.Context, task model.FileTask) model.Result {
	task.Operation = model.OpThumbNail
	format, err := imageproc.FormatFromFilename(task.Destination)
	if err != nil {
		return s.fail(ctx, task, err)
	}

	return s.run(ctx, task, format, func(r io.Reader, opts imageproc.Options) (io.Reader, int64, error) {
		return imageproc.Thumbnail(r, task.Width, task.Height, opts)
	})
}

func (s *ImageService) run(ctx context.Context, task model.FileTask, format imageproc.Format, op operation) model.Result {
	if err := ctx.Err(); err != nil {
		logger := runlog.FromContext(ctx)
		logger.Warn().Str("path", task.Source).Msg("Task skipped: run canceled")
		return model.Result{Task: task, Status: model.StatusSkipped, Err: err}
	}

	size, err := s.apply(ctx, task, format, op)
	if err != nil {
		return s.fail(ctx, task, err)
	}

	logger := runlog.FromContext(ctx)
	logger.Debug().
		Str("op", string(task.Operation)).
		Str("src", task.Source).
		Str("dst", task.Destination).
		Int64("bytes", size).
		Msg("Task done")

	return model.Result{Task: task, Status: model.StatusDone, Size: size}
}

func (s *ImageService) apply(ctx context.Context, task model.FileTask, format imageproc.Format, op operation) (int64, error) {
	src, err := os.Open(task.Source)
	if err != nil {
		return 0, err
	}
	defer closeFileFlow(ctx, src)

	opts := imageproc.DefaultOptions(format)
	opts.Filter = s.filter
	opts.WebPLossless = s.webpLossless
	opts.JPEGQuality = s.jpegQuality
	opts.WebPQuality = s.webpQuality

	result, size, err := op(src, opts)
	if err != nil {
		return 0, err
	}

	if err := s.storage.Put(ctx, task.Destination, size, format.ContentType(), result); err != nil {
		return 0, fmt.Errorf("save result: %w", err)
	}

	return size, nil
}

func (s *ImageService) fail(ctx context.Context, task model.FileTask, err error) model.Result {
	opErr := &model.OperationError{Op: task.Operation, Path: task.Source, Err: err}

	logger := runlog.FromContext(ctx)
	logger.Error().
		Err(err).
		Str("op", string(task.Operation)).
		Str("path", task.Source).
		Msg("Task failed")

	return model.Result{Task: task, Status: model.StatusFailed, Err: opErr}
}

func closeFileFlow(ctx context.Context, res io.Closer) {
	if err := res.Close(); err != nil {
		logger := runlog.FromContext(ctx)
		logger.Warn().Err(err).Msg("Failed to close source file")
	}
}
