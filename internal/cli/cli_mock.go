package cli

import (
	"context"
	"sync"

	"github.com/UnendingLoop/ImageResizer/internal/model"
)

type mockProcessor struct {
	mu    sync.Mutex
	tasks []model.FileTask
	fail  bool
}

func (m *mockProcessor) record(task model.FileTask) model.Result {
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()

	if m.fail {
		return model.Result{
			Task:   task,
			Status: model.StatusFailed,
			Err:    &model.OperationError{Op: task.Operation, Path: task.Source, Err: model.ErrUnsupportedFormat},
		}
	}
	return model.Result{Task: task, Status: model.StatusDone}
}

func (m *mockProcessor) PrepareDir(context.Context, string) error {
	return nil
}

func (m *mockProcessor) ResizeFile(_ context.Context, task model.FileTask) model.Result {
	return m.record(task)
}

func (m *mockProcessor) ConvertFile(_ context.Context, task model.FileTask) model.Result {
	return m.record(task)
}

func (m *mockProcessor) ThumbnailFile(_ context.Context, task model.FileTask) model.Result {
	return m.record(task)
}
