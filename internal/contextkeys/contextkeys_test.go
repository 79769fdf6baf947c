package contextkeys

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnsureTraceID(t *testing.T) {
	ctx, id := EnsureTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", id)
	assert.Equal(t, "abc", TraceIDFromContext(ctx))

	ctx2, id2 := EnsureTraceID(ctx, "")
	assert.Equal(t, "abc", id2)
	assert.Equal(t, "abc", TraceIDFromContext(ctx2))

	_, generated := EnsureTraceID(context.Background(), "")
	assert.Len(t, generated, 36)
}

func TestDetach_SurvivesCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	ctx = ContextWithTraceID(ctx, "trace-1")
	cancel()

	detached := Detach(ctx)
	assert.NoError(t, detached.Err())
	assert.Equal(t, "trace-1", TraceIDFromContext(detached))
	assert.NotNil(t, LoggerFromContext(detached))
}

func TestLoggerFromContext_Noop(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	assert.NotPanics(t, func() {
		logger.WithFields(nil).Info("x", nil)
	})
}
