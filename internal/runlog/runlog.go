// Package runlog provides a run-scoped logger carried through the context
package runlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

type loggerWithRunID struct{}

// WithLogger - создает логгер с run_id и именем команды и кладет его в контекст
func WithLogger(ctx context.Context, command string) (context.Context, string) {
	runID := uuid.NewString()

	logger := zlog.Logger.With().
		Str("run_id", runID).
		Str("command", command).
		Logger()

	return context.WithValue(ctx, loggerWithRunID{}, logger), runID
}

// FromContext extracts logger from context - used in service-layer
func FromContext(ctx context.Context) zlog.Zerolog {
	if l, ok := ctx.Value(loggerWithRunID{}).(zlog.Zerolog); ok {
		return l
	}
	return zlog.Logger
}
