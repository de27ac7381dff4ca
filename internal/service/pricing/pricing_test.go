package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinio/clinio_backend/config"
	"github.com/clinio/clinio_backend/internal/repository"
)

func newService(t *testing.T) (Service, uuid.UUID) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Pricing.DefaultValue = config.DefaultProcedureValue
	svc := New(repository.NewMemory(), cfg)
	clinic := uuid.Must(uuid.NewV7())

	ctx := context.Background()
	_, err := svc.SetPrice(ctx, clinic, "Implante Unitário", decimal.NewFromInt(2500))
	require.NoError(t, err)
	_, err = svc.SetPrice(ctx, clinic, "Limpeza", decimal.NewFromInt(200))
	require.NoError(t, err)

	return svc, clinic
}

func TestValueForFallbackChain(t *testing.T) {
	ctx := context.Background()
	svc, clinic := newService(t)

	t.Run("exact name", func(t *testing.T) {
		v, src, err := svc.ValueFor(ctx, clinic, "Limpeza")
		require.NoError(t, err)
		assert.Equal(t, SourceExact, src)
		assert.True(t, v.Equal(decimal.NewFromInt(200)))
	})

	t.Run("case-insensitive substring", func(t *testing.T) {
		v, src, err := svc.ValueFor(ctx, clinic, "implante")
		require.NoError(t, err)
		assert.Equal(t, SourceSubstring, src)
		assert.True(t, v.Equal(decimal.NewFromInt(2500)))
	})

	t.Run("catalog miss falls back to the default", func(t *testing.T) {
		v, src, err := svc.ValueFor(ctx, clinic, "Harmonização Facial")
		require.NoError(t, err)
		assert.Equal(t, SourceDefault, src)
		assert.True(t, v.Equal(decimal.NewFromInt(100)))
	})
}

func TestSetPriceValidation(t *testing.T) {
	ctx := context.Background()
	svc, clinic := newService(t)

	_, err := svc.SetPrice(ctx, clinic, "", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.SetPrice(ctx, clinic, "Botox", decimal.NewFromInt(-10))
	assert.ErrorIs(t, err, ErrInvalidPrice)
}
