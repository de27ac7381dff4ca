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

type generatorFixture struct {
	store        *repository.Memory
	svc          Service
	clinicID     uuid.UUID
	professional model.StaffMember
	seller       model.StaffMember
}

func newGeneratorFixture(t *testing.T) *generatorFixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemory()
	f := &generatorFixture{
		store:    store,
		svc:      New(store, nil),
		clinicID: uuid.Must(uuid.NewV7()),
	}

	f.professional = model.StaffMember{
		ClinicID: f.clinicID,
		Name:     "Dra. Helena Castro",
		Role:     model.RoleProfessional,
		IsActive: true,
	}
	require.NoError(t, store.Staff().Create(ctx, &f.professional))

	f.seller = model.StaffMember{
		ClinicID: f.clinicID,
		Name:     "Marcos Lima",
		Role:     model.RoleSeller,
		IsActive: true,
	}
	require.NoError(t, store.Staff().Create(ctx, &f.seller))

	return f
}

func (f *generatorFixture) addRule(t *testing.T, in RuleInput) *model.CommissionRule {
	t.Helper()
	rule, err := f.svc.CreateRule(context.Background(), f.clinicID, in)
	require.NoError(t, err)
	return rule
}

func (f *generatorFixture) input() GenerateInput {
	return GenerateInput{
		ClinicID:       f.clinicID,
		PaymentID:      uuid.Must(uuid.NewV7()),
		AppointmentID:  uuid.Must(uuid.NewV7()),
		ProfessionalID: f.professional.ID,
		Procedure:      "Limpeza",
		Date:           time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ServiceValue:   decimal.NewFromInt(200),
		Quantity:       1,
		ActorID:        uuid.Must(uuid.NewV7()),
	}
}

func TestGenerateProfessionalAndSeller(t *testing.T) {
	ctx := context.Background()
	f := newGeneratorFixture(t)

	f.addRule(t, RuleInput{
		BeneficiaryType: model.BeneficiaryProfessional,
		CalcType:        model.CalcPercentage,
		CalcUnit:        model.UnitAppointment,
		Value:           decimal.NewFromInt(30),
		IsActive:        true,
	})
	f.addRule(t, RuleInput{
		BeneficiaryType: model.BeneficiarySeller,
		CalcType:        model.CalcFixed,
		CalcUnit:        model.UnitAppointment,
		Value:           decimal.NewFromInt(50),
		IsActive:        true,
	})

	in := f.input()
	in.SellerID = &f.seller.ID
	res, err := f.svc.Generate(ctx, in)
	require.NoError(t, err)
	require.Len(t, res.Commissions, 2)
	assert.False(t, res.WithoutProfessionalRule)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(110)), "total %s", res.Total)

	byType := map[model.BeneficiaryType]model.Commission{}
	for _, c := range res.Commissions {
		byType[c.BeneficiaryType] = c
	}

	prof := byType[model.BeneficiaryProfessional]
	assert.True(t, prof.Amount.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, f.professional.ID, prof.BeneficiaryID)
	assert.Equal(t, "Dra. Helena Castro", prof.BeneficiaryName)
	assert.Equal(t, model.BeneficiaryKeyGeneral, prof.BeneficiaryKey)
	assert.Equal(t, model.CommissionPending, prof.Status)

	seller := byType[model.BeneficiarySeller]
	assert.True(t, seller.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, f.seller.ID, seller.BeneficiaryID)
	assert.Equal(t, "Marcos Lima", seller.BeneficiaryName)

	stored, err := f.store.Commissions().ListByPayment(ctx, in.PaymentID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestGenerateRetryIsBlockedAsDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newGeneratorFixture(t)
	f.addRule(t, RuleInput{
		BeneficiaryType: model.BeneficiaryProfessional,
		CalcType:        model.CalcPercentage,
		CalcUnit:        model.UnitAppointment,
		Value:           decimal.NewFromInt(30),
		IsActive:        true,
	})

	in := f.input()
	_, err := f.svc.Generate(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.Generate(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicateCommission)

	// Exactly one row survives both calls.
	stored, err := f.store.Commissions().ListByPayment(ctx, in.PaymentID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestGenerateNoRule(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked without acknowledgement", func(t *testing.T) {
		f := newGeneratorFixture(t)
		_, err := f.svc.Generate(ctx, f.input())
		assert.ErrorIs(t, err, ErrNoApplicableRule)
	})

	t.Run("acknowledgement bypasses and seller still generates", func(t *testing.T) {
		f := newGeneratorFixture(t)
		f.addRule(t, RuleInput{
			BeneficiaryType: model.BeneficiarySeller,
			CalcType:        model.CalcFixed,
			CalcUnit:        model.UnitAppointment,
			Value:           decimal.NewFromInt(50),
			IsActive:        true,
		})

		in := f.input()
		in.SellerID = &f.seller.ID
		in.AllowWithoutRule = true
		res, err := f.svc.Generate(ctx, in)
		require.NoError(t, err)
		assert.True(t, res.WithoutProfessionalRule)
		require.Len(t, res.Commissions, 1)
		assert.Equal(t, model.BeneficiarySeller, res.Commissions[0].BeneficiaryType)
	})

	t.Run("acknowledgement with nothing to generate yields empty result", func(t *testing.T) {
		f := newGeneratorFixture(t)
		in := f.input()
		in.AllowWithoutRule = true
		res, err := f.svc.Generate(ctx, in)
		require.NoError(t, err)
		assert.Empty(t, res.Commissions)
		assert.True(t, res.Total.IsZero())
	})
}

func TestGenerateValidation(t *testing.T) {
	ctx := context.Background()
	f := newGeneratorFixture(t)

	in := f.input()
	in.ServiceValue = decimal.NewFromInt(-1)
	_, err := f.svc.Generate(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidValue)

	in = f.input()
	in.Quantity = -3
	_, err = f.svc.Generate(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestGenerateQuantityDefaultsToOne(t *testing.T) {
	ctx := context.Background()
	f := newGeneratorFixture(t)
	f.addRule(t, RuleInput{
		BeneficiaryType: model.BeneficiaryProfessional,
		CalcType:        model.CalcFixed,
		CalcUnit:        model.UnitML,
		Value:           decimal.NewFromInt(25),
		IsActive:        true,
	})

	in := f.input()
	in.Quantity = 0
	res, err := f.svc.Generate(ctx, in)
	require.NoError(t, err)
	require.Len(t, res.Commissions, 1)
	assert.True(t, res.Commissions[0].Amount.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 1, res.Commissions[0].Quantity)
}

func TestGenerateMissingStaffNameTolerated(t *testing.T) {
	ctx := context.Background()
	f := newGeneratorFixture(t)
	f.addRule(t, RuleInput{
		BeneficiaryType: model.BeneficiaryProfessional,
		CalcType:        model.CalcPercentage,
		CalcUnit:        model.UnitAppointment,
		Value:           decimal.NewFromInt(30),
		IsActive:        true,
	})

	in := f.input()
	in.ProfessionalID = uuid.Must(uuid.NewV7())
	res, err := f.svc.Generate(ctx, in)
	require.NoError(t, err)
	require.Len(t, res.Commissions, 1)
	assert.Empty(t, res.Commissions[0].BeneficiaryName)
}
