package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinio/clinio_backend/config"
	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
	"github.com/clinio/clinio_backend/internal/service/billing"
	"github.com/clinio/clinio_backend/internal/service/commission"
	"github.com/clinio/clinio_backend/internal/service/pricing"
)

type fixture struct {
	store        *repository.Memory
	svc          Service
	pricing      pricing.Service
	clinicID     uuid.UUID
	professional model.StaffMember
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemory()

	cfg := &config.Config{}
	cfg.Pricing.DefaultValue = config.DefaultProcedureValue

	pricingSvc := pricing.New(store, cfg)
	commSvc := commission.New(store, nil)
	billingSvc := billing.New(store, commSvc, nil)

	f := &fixture{
		store:    store,
		svc:      New(store, pricingSvc, billingSvc),
		pricing:  pricingSvc,
		clinicID: uuid.Must(uuid.NewV7()),
	}

	f.professional = model.StaffMember{
		ClinicID: f.clinicID,
		Name:     "Dra. Helena Castro",
		Role:     model.RoleProfessional,
		IsActive: true,
	}
	require.NoError(t, store.Staff().Create(ctx, &f.professional))

	return f
}

func (f *fixture) book(t *testing.T, procedure string, quantity int) *model.Appointment {
	t.Helper()
	a, err := f.svc.Book(context.Background(), f.clinicID, BookRequest{
		ProfessionalID: f.professional.ID,
		PatientID:      uuid.Must(uuid.NewV7()),
		Procedure:      procedure,
		Quantity:       quantity,
		Date:           time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return a
}

func TestBookValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Book(ctx, f.clinicID, BookRequest{
		PatientID: uuid.Must(uuid.NewV7()),
		Procedure: "Limpeza",
	})
	assert.ErrorIs(t, err, ErrInvalidAppointment)

	_, err = f.svc.Book(ctx, f.clinicID, BookRequest{
		ProfessionalID: uuid.Must(uuid.NewV7()),
		PatientID:      uuid.Must(uuid.NewV7()),
		Procedure:      "Limpeza",
	})
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
}

func TestBookKeepsLeadSourceAndNotes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.Book(ctx, f.clinicID, BookRequest{
		ProfessionalID: f.professional.ID,
		PatientID:      uuid.Must(uuid.NewV7()),
		Procedure:      "Limpeza",
		Date:           time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		LeadSource:     "instagram",
		Notes:          "retorno em 30 dias",
	})
	require.NoError(t, err)

	stored, err := f.svc.GetByID(ctx, f.clinicID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "instagram", stored.LeadSource)
	assert.Equal(t, "retorno em 30 dias", stored.Notes)
}

func TestCompleteOpensPendingPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.pricing.SetPrice(ctx, f.clinicID, "Limpeza", decimal.NewFromInt(200))
	require.NoError(t, err)

	a := f.book(t, "Limpeza", 1)
	res, err := f.svc.Complete(ctx, f.clinicID, a.ID, CompleteRequest{ActorID: uuid.Must(uuid.NewV7())})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentCompleted, res.Appointment.Status)
	require.NotNil(t, res.Appointment.CompletedAt)
	assert.Equal(t, pricing.SourceExact, res.PriceSource)

	require.NotNil(t, res.Payment)
	assert.Equal(t, model.PaymentPending, res.Payment.Status)
	assert.True(t, res.Payment.Amount.Equal(decimal.NewFromInt(200)))
	assert.False(t, res.Payment.AllowWithoutRule)
}

func TestCompleteQuantityScalesServiceValue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.pricing.SetPrice(ctx, f.clinicID, "Botox", decimal.NewFromInt(90))
	require.NoError(t, err)

	a := f.book(t, "Botox", 4)
	res, err := f.svc.Complete(ctx, f.clinicID, a.ID, CompleteRequest{})
	require.NoError(t, err)
	assert.True(t, res.Payment.Amount.Equal(decimal.NewFromInt(360)), "amount %s", res.Payment.Amount)
	assert.Equal(t, 4, res.Payment.Quantity)
}

func TestCompleteUsesDefaultPriceOnCatalogMiss(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.book(t, "Procedimento Raro", 1)
	res, err := f.svc.Complete(ctx, f.clinicID, a.ID, CompleteRequest{})
	require.NoError(t, err)
	assert.Equal(t, pricing.SourceDefault, res.PriceSource)
	assert.True(t, res.Payment.Amount.Equal(decimal.NewFromInt(100)))
}

func TestCompleteCarriesAcknowledgement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.book(t, "Limpeza", 1)
	res, err := f.svc.Complete(ctx, f.clinicID, a.ID, CompleteRequest{AllowWithoutRule: true})
	require.NoError(t, err)
	assert.True(t, res.Payment.AllowWithoutRule)
}

func TestCompleteTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.book(t, "Limpeza", 1)
	_, err := f.svc.Complete(ctx, f.clinicID, a.ID, CompleteRequest{})
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, f.clinicID, a.ID, CompleteRequest{})
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := uuid.Must(uuid.NewV7())

	a := f.book(t, "Limpeza", 1)
	require.NoError(t, f.svc.Cancel(ctx, f.clinicID, a.ID, actor))

	got, err := f.svc.GetByID(ctx, f.clinicID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentCancelled, got.Status)

	// Idempotent.
	require.NoError(t, f.svc.Cancel(ctx, f.clinicID, a.ID, actor))

	_, err = f.svc.Complete(ctx, f.clinicID, a.ID, CompleteRequest{})
	assert.ErrorIs(t, err, ErrAppointmentCancelled)
}
