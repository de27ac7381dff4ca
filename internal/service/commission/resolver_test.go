package commission

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinio/clinio_backend/internal/model"
)

var (
	clinicID       = uuid.Must(uuid.NewV7())
	professionalID = uuid.Must(uuid.NewV7())
	// 2026-03-02 is a Monday.
	monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
)

func strptr(s string) *string                 { return &s }
func weekdayptr(d time.Weekday) *time.Weekday { return &d }
func uuidptr(u uuid.UUID) *uuid.UUID          { return &u }

func professionalRule(mutate ...func(*model.CommissionRule)) model.CommissionRule {
	r := model.CommissionRule{
		ID:              uuid.Must(uuid.NewV7()),
		ClinicID:        clinicID,
		BeneficiaryType: model.BeneficiaryProfessional,
		CalcType:        model.CalcPercentage,
		CalcUnit:        model.UnitAppointment,
		Value:           decimal.NewFromInt(30),
		IsActive:        true,
	}
	for _, m := range mutate {
		m(&r)
	}
	r.Priority = DerivePriority(&r)
	return r
}

func baseContext() MatchContext {
	return MatchContext{
		ClinicID:       clinicID,
		ProfessionalID: professionalID,
		Procedure:      "Limpeza",
		Date:           monday,
	}
}

func TestDerivePriorityMonotonic(t *testing.T) {
	general := professionalRule()
	oneFilter := professionalRule(func(r *model.CommissionRule) { r.Procedure = strptr("Limpeza") })
	twoFilters := professionalRule(func(r *model.CommissionRule) {
		r.Procedure = strptr("Limpeza")
		r.ProfessionalID = uuidptr(professionalID)
	})
	fourFilters := professionalRule(func(r *model.CommissionRule) {
		r.Procedure = strptr("Limpeza")
		r.ProfessionalID = uuidptr(professionalID)
		r.Weekday = weekdayptr(time.Monday)
		r.BeneficiaryID = uuidptr(professionalID)
	})

	assert.Greater(t, oneFilter.Priority, general.Priority)
	assert.Greater(t, twoFilters.Priority, oneFilter.Priority)
	assert.Greater(t, fourFilters.Priority, twoFilters.Priority)
}

func TestResolveEmptyInput(t *testing.T) {
	assert.Empty(t, Resolve(nil, baseContext()))
	assert.Empty(t, Resolve([]model.CommissionRule{}, baseContext()))
}

func TestResolveSpecificProcedureOutranksGeneral(t *testing.T) {
	general := professionalRule(func(r *model.CommissionRule) {
		r.Value = decimal.NewFromInt(30)
	})
	specific := professionalRule(func(r *model.CommissionRule) {
		r.ProfessionalID = uuidptr(professionalID)
		r.Procedure = strptr("Implante Unitário")
		r.Value = decimal.NewFromInt(45)
	})
	rules := []model.CommissionRule{general, specific}

	mc := baseContext()
	mc.Procedure = "Implante Unitário"
	winners := Resolve(rules, mc)
	require.Len(t, winners, 1)
	assert.Equal(t, specific.ID, winners[0].ID)
	assert.True(t, winners[0].Value.Equal(decimal.NewFromInt(45)))

	// A different procedure for the same professional falls back to the
	// general rule.
	mc.Procedure = "Limpeza"
	winners = Resolve(rules, mc)
	require.Len(t, winners, 1)
	assert.Equal(t, general.ID, winners[0].ID)
	assert.True(t, winners[0].Value.Equal(decimal.NewFromInt(30)))
}

func TestResolveRejections(t *testing.T) {
	mc := baseContext()

	t.Run("inactive", func(t *testing.T) {
		r := professionalRule(func(r *model.CommissionRule) { r.IsActive = false })
		assert.Empty(t, Resolve([]model.CommissionRule{r}, mc))
	})

	t.Run("other clinic", func(t *testing.T) {
		r := professionalRule(func(r *model.CommissionRule) { r.ClinicID = uuid.Must(uuid.NewV7()) })
		assert.Empty(t, Resolve([]model.CommissionRule{r}, mc))
	})

	t.Run("other professional", func(t *testing.T) {
		r := professionalRule(func(r *model.CommissionRule) { r.ProfessionalID = uuidptr(uuid.Must(uuid.NewV7())) })
		assert.Empty(t, Resolve([]model.CommissionRule{r}, mc))
	})

	t.Run("other weekday", func(t *testing.T) {
		r := professionalRule(func(r *model.CommissionRule) { r.Weekday = weekdayptr(time.Friday) })
		assert.Empty(t, Resolve([]model.CommissionRule{r}, mc))
	})

	t.Run("matching weekday", func(t *testing.T) {
		r := professionalRule(func(r *model.CommissionRule) { r.Weekday = weekdayptr(time.Monday) })
		assert.Len(t, Resolve([]model.CommissionRule{r}, mc), 1)
	})
}

func TestResolveSellerRequiresAssignment(t *testing.T) {
	sellerID := uuid.Must(uuid.NewV7())
	sellerRule := professionalRule(func(r *model.CommissionRule) {
		r.BeneficiaryType = model.BeneficiarySeller
		r.CalcType = model.CalcFixed
		r.Value = decimal.NewFromInt(50)
	})
	profRule := professionalRule()
	rules := []model.CommissionRule{sellerRule, profRule}

	t.Run("no seller assigned yields only the professional commission", func(t *testing.T) {
		winners := Resolve(rules, baseContext())
		require.Len(t, winners, 1)
		assert.Equal(t, model.BeneficiaryProfessional, winners[0].BeneficiaryType)
	})

	t.Run("assigned seller matches the general seller rule", func(t *testing.T) {
		mc := baseContext()
		mc.SellerID = uuidptr(sellerID)
		winners := Resolve(rules, mc)
		require.Len(t, winners, 2)
	})

	t.Run("specific seller rule rejects a different seller", func(t *testing.T) {
		specific := sellerRule
		specific.BeneficiaryID = uuidptr(uuid.Must(uuid.NewV7()))
		specific.Priority = DerivePriority(&specific)

		mc := baseContext()
		mc.SellerID = uuidptr(sellerID)
		winners := Resolve([]model.CommissionRule{specific}, mc)
		assert.Empty(t, winners)
	})
}

func TestResolveProfessionalFilterOnSellerRule(t *testing.T) {
	sellerID := uuid.Must(uuid.NewV7())
	bound := professionalRule(func(r *model.CommissionRule) {
		r.BeneficiaryType = model.BeneficiarySeller
		r.CalcType = model.CalcFixed
		r.Value = decimal.NewFromInt(50)
		r.ProfessionalID = uuidptr(professionalID)
	})

	t.Run("fires on the bound professional's appointments", func(t *testing.T) {
		mc := baseContext()
		mc.SellerID = uuidptr(sellerID)
		winners := Resolve([]model.CommissionRule{bound}, mc)
		require.Len(t, winners, 1)
		assert.Equal(t, bound.ID, winners[0].ID)
	})

	t.Run("rejects another professional's appointments", func(t *testing.T) {
		mc := baseContext()
		mc.ProfessionalID = uuid.Must(uuid.NewV7())
		mc.SellerID = uuidptr(sellerID)
		assert.Empty(t, Resolve([]model.CommissionRule{bound}, mc))
	})

	t.Run("bound rule outranks the general seller rule", func(t *testing.T) {
		general := professionalRule(func(r *model.CommissionRule) {
			r.BeneficiaryType = model.BeneficiarySeller
			r.CalcType = model.CalcFixed
			r.Value = decimal.NewFromInt(20)
		})
		mc := baseContext()
		mc.SellerID = uuidptr(sellerID)
		winners := Resolve([]model.CommissionRule{general, bound}, mc)
		require.Len(t, winners, 1)
		assert.Equal(t, bound.ID, winners[0].ID)
	})
}

func TestResolveReceptionGatedOnCaller(t *testing.T) {
	receptionRule := professionalRule(func(r *model.CommissionRule) {
		r.BeneficiaryType = model.BeneficiaryReception
		r.CalcType = model.CalcFixed
		r.Value = decimal.NewFromInt(10)
	})

	assert.Empty(t, Resolve([]model.CommissionRule{receptionRule}, baseContext()))

	mc := baseContext()
	mc.ReceptionID = uuidptr(uuid.Must(uuid.NewV7()))
	assert.Len(t, Resolve([]model.CommissionRule{receptionRule}, mc), 1)
}

func TestResolveOneWinnerPerGroup(t *testing.T) {
	specificSeller := uuid.Must(uuid.NewV7())
	generalSeller := professionalRule(func(r *model.CommissionRule) {
		r.BeneficiaryType = model.BeneficiarySeller
	})
	namedSeller := professionalRule(func(r *model.CommissionRule) {
		r.BeneficiaryType = model.BeneficiarySeller
		r.BeneficiaryID = uuidptr(specificSeller)
	})
	prof := professionalRule()

	mc := baseContext()
	mc.SellerID = uuidptr(specificSeller)
	winners := Resolve([]model.CommissionRule{generalSeller, namedSeller, prof}, mc)

	// The named seller rule lands in its own group (seller:<id>), the general
	// one in seller:general, so both survive alongside the professional.
	require.Len(t, winners, 3)
}

func TestResolveTieBreakFirstSeenWins(t *testing.T) {
	first := professionalRule(func(r *model.CommissionRule) { r.Value = decimal.NewFromInt(20) })
	second := professionalRule(func(r *model.CommissionRule) { r.Value = decimal.NewFromInt(40) })
	require.Equal(t, first.Priority, second.Priority)

	winners := Resolve([]model.CommissionRule{first, second}, baseContext())
	require.Len(t, winners, 1)
	assert.Equal(t, first.ID, winners[0].ID)

	winners = Resolve([]model.CommissionRule{second, first}, baseContext())
	require.Len(t, winners, 1)
	assert.Equal(t, second.ID, winners[0].ID)
}
