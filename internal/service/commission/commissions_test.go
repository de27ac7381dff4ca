package commission

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
)

func generateOne(t *testing.T, f *generatorFixture) model.Commission {
	t.Helper()
	f.addRule(t, RuleInput{
		BeneficiaryType: model.BeneficiaryProfessional,
		CalcType:        model.CalcPercentage,
		CalcUnit:        model.UnitAppointment,
		Value:           decimal.NewFromInt(30),
		IsActive:        true,
	})
	res, err := f.svc.Generate(context.Background(), f.input())
	require.NoError(t, err)
	require.Len(t, res.Commissions, 1)
	return res.Commissions[0]
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	f := newGeneratorFixture(t)
	c := generateOne(t, f)
	actor := uuid.Must(uuid.NewV7())

	paid, err := f.svc.MarkPaid(ctx, f.clinicID, c.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, model.CommissionPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.WithinDuration(t, time.Now(), *paid.PaidAt, time.Minute)

	t.Run("paid is terminal", func(t *testing.T) {
		_, err := f.svc.MarkPaid(ctx, f.clinicID, c.ID, actor)
		assert.ErrorIs(t, err, ErrAlreadyPaid)

		_, err = f.svc.Cancel(ctx, f.clinicID, c.ID, actor)
		assert.ErrorIs(t, err, ErrAlreadyPaid)

		err = f.svc.Delete(ctx, f.clinicID, c.ID)
		assert.ErrorIs(t, err, ErrAlreadyPaid)
	})
}

func TestMarkPaidCancelled(t *testing.T) {
	ctx := context.Background()
	f := newGeneratorFixture(t)
	c := generateOne(t, f)
	actor := uuid.Must(uuid.NewV7())

	_, err := f.svc.Cancel(ctx, f.clinicID, c.ID, actor)
	require.NoError(t, err)

	_, err = f.svc.MarkPaid(ctx, f.clinicID, c.ID, actor)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestCancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newGeneratorFixture(t)
	c := generateOne(t, f)
	actor := uuid.Must(uuid.NewV7())

	first, err := f.svc.Cancel(ctx, f.clinicID, c.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, model.CommissionCancelled, first.Status)

	second, err := f.svc.Cancel(ctx, f.clinicID, c.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, model.CommissionCancelled, second.Status)
}

func TestDeletePending(t *testing.T) {
	ctx := context.Background()
	f := newGeneratorFixture(t)
	c := generateOne(t, f)

	require.NoError(t, f.svc.Delete(ctx, f.clinicID, c.ID))
	_, err := f.svc.Get(ctx, f.clinicID, c.ID)
	assert.ErrorIs(t, err, ErrCommissionNotFound)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	f := newGeneratorFixture(t)
	c := generateOne(t, f)

	t.Run("by beneficiary", func(t *testing.T) {
		out, err := f.svc.List(ctx, f.clinicID, repository.CommissionFilter{BeneficiaryID: &c.BeneficiaryID})
		require.NoError(t, err)
		assert.Len(t, out, 1)

		other := uuid.Must(uuid.NewV7())
		out, err = f.svc.List(ctx, f.clinicID, repository.CommissionFilter{BeneficiaryID: &other})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("by status", func(t *testing.T) {
		pending := model.CommissionPending
		out, err := f.svc.List(ctx, f.clinicID, repository.CommissionFilter{Status: &pending})
		require.NoError(t, err)
		assert.Len(t, out, 1)

		paidStatus := model.CommissionPaid
		out, err = f.svc.List(ctx, f.clinicID, repository.CommissionFilter{Status: &paidStatus})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("other clinic sees nothing", func(t *testing.T) {
		out, err := f.svc.List(ctx, uuid.Must(uuid.NewV7()), repository.CommissionFilter{})
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
