package logs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}

	log := slog.New(h)
	log.Info("payment confirmed", "payment_id", "p-1")

	assert.Contains(t, a.String(), "payment confirmed")
	// Second handler is warn-level and must stay silent on info records.
	assert.Empty(t, b.String())

	log.Warn("generation skipped")
	assert.Contains(t, a.String(), "generation skipped")
	assert.Contains(t, b.String(), "generation skipped")
}

func TestMultiHandlerWithAttrs(t *testing.T) {
	var a, b bytes.Buffer
	base := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	}}

	log := slog.New(base.WithAttrs([]slog.Attr{slog.String("service", "clinio_backend")}))
	log.Info("up")

	require.Contains(t, a.String(), "clinio_backend")
	require.Contains(t, b.String(), "clinio_backend")
}

func TestMultiHandlerEnabled(t *testing.T) {
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}

	ctx := context.Background()
	assert.True(t, h.Enabled(ctx, slog.LevelDebug))
	assert.True(t, h.Enabled(ctx, slog.LevelError))
}
