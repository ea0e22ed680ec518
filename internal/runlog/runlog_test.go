package runlog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestWithLogger(t *testing.T) {
	ctx, runID := WithLogger(context.Background(), "resize")

	_, err := uuid.Parse(runID)
	require.NoError(t, err)

	require.NotNil(t, ctx.Value(loggerWithRunID{}))

	_, otherID := WithLogger(ctx, "convert")
	require.NotEqual(t, runID, otherID)
}

func TestFromContext_Fallback(t *testing.T) {
	require.NotPanics(t, func() {
		logger := FromContext(context.Background())
		logger.Debug().Msg("fallback logger")
	})
}
