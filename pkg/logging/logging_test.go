package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"garbage", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Run("nil context falls back to default", func(t *testing.T) {
		//nolint:staticcheck // exercising the nil guard
		assert.Equal(t, Default(), FromContext(nil))
	})

	t.Run("stored logger is returned", func(t *testing.T) {
		tl := NewTestLogger(t)
		ctx := WithLogger(context.Background(), tl.Logger)
		assert.Same(t, tl.Logger, FromContext(ctx))
		assert.Same(t, tl.Logger, Ctx(ctx))
	})
}

func TestDomainFields(t *testing.T) {
	tl := NewTestLogger(t)
	ctx := WithLogger(context.Background(), tl.Logger)
	ctx = WithSeries(ctx, "1.2.3")
	ctx = WithHandler(ctx, "stack")
	ctx = WithDisplaySet(ctx, "ds-1")
	ctx = WithOperation(ctx, "ingest")

	FromContext(ctx).Info().Msg("resolved")

	require.Equal(t, 1, tl.Count())
	out := tl.Output()
	assert.Contains(t, out, `"series_uid":"1.2.3"`)
	assert.Contains(t, out, `"handler_id":"stack"`)
	assert.Contains(t, out, `"display_set_uid":"ds-1"`)
	assert.Contains(t, out, `"operation":"ingest"`)
}

func TestWithFields(t *testing.T) {
	tl := NewTestLogger(t)
	ctx := WithLogger(context.Background(), tl.Logger)
	ctx = WithFields(ctx, map[string]any{
		"count": 3,
		"ok":    true,
		"error": errors.New("boom"),
	})

	FromContext(ctx).Warn().Msg("group failed")

	assert.True(t, tl.Contains(`"count":3`))
	assert.True(t, tl.Contains(`"ok":true`))
	assert.True(t, tl.Contains(`"error":"boom"`))

	tl.Clear()
	assert.Equal(t, 0, tl.Count())
}

func TestNewLoggerFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "discard"
	cfg.Format = "json"
	cfg.Level = "error"
	cfg.Fields = map[string]any{"service": "dsctl"}

	logger := NewLoggerFromConfig(cfg)
	assert.Equal(t, zerolog.ErrorLevel, logger.GetLevel())

	assert.NotPanics(t, func() {
		logger := NewLoggerFromConfig(nil)
		logger.Debug().Msg("nothing")
	})
}
