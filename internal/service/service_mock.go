package service

import (
	"context"
	"io"
)

type mockStorage struct {
	makeDirFn func(ctx context.Context, dir string) error
	putFn     func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
}

func (m *mockStorage) MakeDir(ctx context.Context, dir string) error {
	if m.makeDirFn == nil {
		return nil
	}
	return m.makeDirFn(ctx, dir)
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}
