// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"fmt"
	"strings"
)

type (
	Operation string
	Status    string
)

const (
	OpResize    Operation = "resize"
	OpConvert   Operation = "convert"
	OpThumbNail Operation = "thumbnail"
)

const (
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

//---------------------

// FileTask - одна единица работы: исходник, куда писать и параметры операции
type FileTask struct {
	Operation   Operation
	Source      string
	Destination string
	Width       int
	Height      int
	Format      string // только для convert, уже в верхнем регистре
}

// Result - итог обработки одного файла; ошибка это данные, а не паника
type Result struct {
	Task   FileTask
	Status Status
	Size   int64
	Err    error
}

// String renders the human-readable status line for the result.
func (r Result) String() string {
	switch r.Status {
	case StatusFailed:
		return r.Err.Error()
	case StatusSkipped:
		return fmt.Sprintf("Skipped %s", r.Task.Source)
	}

	switch r.Task.Operation {
	case OpConvert:
		return fmt.Sprintf("Converted %s to %s as %s", r.Task.Source, r.Task.Destination, r.Task.Format)
	case OpThumbNail:
		return fmt.Sprintf("Thumbnail %s to %s with size %dx%d", r.Task.Source, r.Task.Destination, r.Task.Width, r.Task.Height)
	default:
		return fmt.Sprintf("Resized %s to %s with size %dx%d", r.Task.Source, r.Task.Destination, r.Task.Width, r.Task.Height)
	}
}

// OperationError wraps any per-file failure into the single user-facing error kind.
type OperationError struct {
	Op   Operation
	Path string
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed for path %s: %v", e.Op, e.Path, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// ------------------

var (
	ErrEmptySource       error = errors.New("empty/incorrect source image provided")
	ErrIncorrectAxis     error = errors.New("width and height must be positive integers")
	ErrIncorrectOp       error = errors.New("operation is not supported")
	ErrUnsupportedFormat error = errors.New("unsupported image format")
	ErrNotADirectory     error = errors.New("input path is not a directory")
)

//--------------------

// BatchExtensions - суффиксы файлов, которые берет batch-resize (сравнение без учета регистра)
var BatchExtensions = []string{"jpg", "jpeg", "png", "webp"}

// IsBatchCandidate reports whether the file name ends in one of BatchExtensions.
func IsBatchCandidate(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range BatchExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
	WEBP = "image/webp"
	BMP  = "image/bmp"
	TIFF = "image/tiff"
)
