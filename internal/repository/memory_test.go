package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinio/clinio_backend/internal/model"
)

func newCommission(clinicID, appointmentID, paymentID uuid.UUID, bt model.BeneficiaryType, key string) *model.Commission {
	return &model.Commission{
		ClinicID:        clinicID,
		AppointmentID:   appointmentID,
		PaymentID:       paymentID,
		BeneficiaryType: bt,
		BeneficiaryID:   uuid.Must(uuid.NewV7()),
		BeneficiaryKey:  key,
		Procedure:       "Limpeza",
		ServiceValue:    decimal.NewFromInt(200),
		Quantity:        1,
		CalcType:        model.CalcPercentage,
		CalcUnit:        model.UnitAppointment,
		CalcValue:       decimal.NewFromInt(30),
		Amount:          decimal.NewFromInt(60),
	}
}

func TestMemoryCommissionsCreateBatchUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	clinicID := uuid.Must(uuid.NewV7())
	appointmentID := uuid.Must(uuid.NewV7())
	paymentID := uuid.Must(uuid.NewV7())

	first := newCommission(clinicID, appointmentID, paymentID, model.BeneficiaryProfessional, "general")
	require.NoError(t, store.Commissions().CreateBatch(ctx, []*model.Commission{first}))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, model.CommissionPending, first.Status)

	t.Run("same appointment, type and key is rejected", func(t *testing.T) {
		dup := newCommission(clinicID, appointmentID, paymentID, model.BeneficiaryProfessional, "general")
		err := store.Commissions().CreateBatch(ctx, []*model.Commission{dup})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("different beneficiary type is allowed", func(t *testing.T) {
		seller := newCommission(clinicID, appointmentID, paymentID, model.BeneficiarySeller, "general")
		assert.NoError(t, store.Commissions().CreateBatch(ctx, []*model.Commission{seller}))
	})

	t.Run("violation inside the batch writes nothing", func(t *testing.T) {
		otherAppt := uuid.Must(uuid.NewV7())
		a := newCommission(clinicID, otherAppt, paymentID, model.BeneficiaryReception, "general")
		b := newCommission(clinicID, otherAppt, paymentID, model.BeneficiaryReception, "general")
		err := store.Commissions().CreateBatch(ctx, []*model.Commission{a, b})
		require.ErrorIs(t, err, ErrDuplicate)

		exists, err := store.Commissions().ExistsActive(ctx, otherAppt, model.BeneficiaryReception)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("cancelled rows do not block a new one", func(t *testing.T) {
		appt := uuid.Must(uuid.NewV7())
		old := newCommission(clinicID, appt, paymentID, model.BeneficiaryProfessional, "general")
		require.NoError(t, store.Commissions().CreateBatch(ctx, []*model.Commission{old}))

		old.Status = model.CommissionCancelled
		require.NoError(t, store.Commissions().Update(ctx, old))

		fresh := newCommission(clinicID, appt, paymentID, model.BeneficiaryProfessional, "general")
		assert.NoError(t, store.Commissions().CreateBatch(ctx, []*model.Commission{fresh}))
	})
}

func TestMemoryCommissionsExistsActive(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	clinicID := uuid.Must(uuid.NewV7())
	appointmentID := uuid.Must(uuid.NewV7())
	paymentID := uuid.Must(uuid.NewV7())

	c := newCommission(clinicID, appointmentID, paymentID, model.BeneficiaryProfessional, "general")
	require.NoError(t, store.Commissions().CreateBatch(ctx, []*model.Commission{c}))

	exists, err := store.Commissions().ExistsActive(ctx, appointmentID, model.BeneficiaryProfessional)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Commissions().ExistsActive(ctx, appointmentID, model.BeneficiarySeller)
	require.NoError(t, err)
	assert.False(t, exists)

	c.Status = model.CommissionCancelled
	require.NoError(t, store.Commissions().Update(ctx, c))

	exists, err = store.Commissions().ExistsActive(ctx, appointmentID, model.BeneficiaryProfessional)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCancelByPaymentSkipsPaid(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	clinicID := uuid.Must(uuid.NewV7())
	appointmentID := uuid.Must(uuid.NewV7())
	paymentID := uuid.Must(uuid.NewV7())

	pending := newCommission(clinicID, appointmentID, paymentID, model.BeneficiaryProfessional, "general")
	paid := newCommission(clinicID, appointmentID, paymentID, model.BeneficiarySeller, "general")
	require.NoError(t, store.Commissions().CreateBatch(ctx, []*model.Commission{pending, paid}))

	now := time.Now()
	paid.Status = model.CommissionPaid
	paid.PaidAt = &now
	require.NoError(t, store.Commissions().Update(ctx, paid))

	n, err := store.Commissions().CancelByPayment(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.Commissions().GetByID(ctx, clinicID, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CommissionPaid, got.Status)

	got, err = store.Commissions().GetByID(ctx, clinicID, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CommissionCancelled, got.Status)
}

func TestMemoryInTxRollback(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	clinicID := uuid.Must(uuid.NewV7())
	appointmentID := uuid.Must(uuid.NewV7())

	boom := errors.New("boom")
	err := store.InTx(ctx, func(tx Store) error {
		p := &model.Payment{
			ClinicID:      clinicID,
			AppointmentID: appointmentID,
			Amount:        decimal.NewFromInt(150),
			Quantity:      1,
		}
		if err := tx.Payments().Create(ctx, p); err != nil {
			return err
		}
		c := newCommission(clinicID, appointmentID, p.ID, model.BeneficiaryProfessional, "general")
		if err := tx.Commissions().CreateBatch(ctx, []*model.Commission{c}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Payments().GetByAppointment(ctx, appointmentID)
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := store.Commissions().ExistsActive(ctx, appointmentID, model.BeneficiaryProfessional)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryInTxCommit(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	clinicID := uuid.Must(uuid.NewV7())
	appointmentID := uuid.Must(uuid.NewV7())

	err := store.InTx(ctx, func(tx Store) error {
		return tx.Payments().Create(ctx, &model.Payment{
			ClinicID:      clinicID,
			AppointmentID: appointmentID,
			Amount:        decimal.NewFromInt(150),
			Quantity:      1,
		})
	})
	require.NoError(t, err)

	p, err := store.Payments().GetByAppointment(ctx, appointmentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, p.Status)
}

func TestMemoryPaymentsUpdateKeepsAcknowledgement(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	clinicID := uuid.Must(uuid.NewV7())

	p := &model.Payment{
		ClinicID:      clinicID,
		AppointmentID: uuid.Must(uuid.NewV7()),
		Amount:        decimal.NewFromInt(150),
		Quantity:      1,
	}
	require.NoError(t, store.Payments().Create(ctx, p))

	// A later acknowledgement must survive the status write.
	p.AllowWithoutRule = true
	now := time.Now()
	p.Status = model.PaymentConfirmed
	p.ConfirmedAt = &now
	require.NoError(t, store.Payments().Update(ctx, p))

	stored, err := store.Payments().GetByID(ctx, clinicID, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.AllowWithoutRule)
	assert.Equal(t, model.PaymentConfirmed, stored.Status)
}

func TestMemoryPricesLookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	clinicID := uuid.Must(uuid.NewV7())

	seed := []model.ProcedurePrice{
		{ClinicID: clinicID, Name: "Implante Unitário", Value: decimal.NewFromInt(2500), IsActive: true},
		{ClinicID: clinicID, Name: "Limpeza", Value: decimal.NewFromInt(200), IsActive: true},
		{ClinicID: clinicID, Name: "Clareamento", Value: decimal.NewFromInt(800), IsActive: false},
	}
	for i := range seed {
		require.NoError(t, store.Prices().Create(ctx, &seed[i]))
	}

	t.Run("exact", func(t *testing.T) {
		p, err := store.Prices().FindExact(ctx, clinicID, "Limpeza")
		require.NoError(t, err)
		assert.True(t, p.Value.Equal(decimal.NewFromInt(200)))
	})

	t.Run("substring is case-insensitive both ways", func(t *testing.T) {
		p, err := store.Prices().FindSubstring(ctx, clinicID, "implante")
		require.NoError(t, err)
		assert.Equal(t, "Implante Unitário", p.Name)

		p, err = store.Prices().FindSubstring(ctx, clinicID, "limpeza completa")
		require.NoError(t, err)
		assert.Equal(t, "Limpeza", p.Name)
	})

	t.Run("inactive entries are skipped", func(t *testing.T) {
		_, err := store.Prices().FindExact(ctx, clinicID, "Clareamento")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("other clinic sees nothing", func(t *testing.T) {
		_, err := store.Prices().FindExact(ctx, uuid.Must(uuid.NewV7()), "Limpeza")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryRulesLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	clinicID := uuid.Must(uuid.NewV7())

	rule := &model.CommissionRule{
		ClinicID:        clinicID,
		BeneficiaryType: model.BeneficiaryProfessional,
		CalcType:        model.CalcPercentage,
		CalcUnit:        model.UnitAppointment,
		Value:           decimal.NewFromInt(30),
		IsActive:        true,
	}
	require.NoError(t, store.Rules().Create(ctx, rule))

	active, err := store.Rules().ListActiveByClinic(ctx, clinicID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, store.Rules().Deactivate(ctx, clinicID, rule.ID))
	active, err = store.Rules().ListActiveByClinic(ctx, clinicID)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.Rules().ListByClinic(ctx, clinicID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.Rules().Delete(ctx, clinicID, rule.ID))
	all, err = store.Rules().ListByClinic(ctx, clinicID)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = store.Rules().GetByID(ctx, clinicID, rule.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
