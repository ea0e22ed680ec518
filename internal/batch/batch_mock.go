package batch

import (
	"context"

	"github.com/UnendingLoop/ImageResizer/internal/model"
)

type mockProcessor struct {
	prepareFn func(ctx context.Context, dir string) error
	resizeFn  func(ctx context.Context, task model.FileTask) model.Result
}

func (m *mockProcessor) PrepareDir(ctx context.Context, dir string) error {
	if m.prepareFn == nil {
		return nil
	}
	return m.prepareFn(ctx, dir)
}

func (m *mockProcessor) ResizeFile(ctx context.Context, task model.FileTask) model.Result {
	return m.resizeFn(ctx, task)
}
