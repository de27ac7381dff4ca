// Package billing owns the payment workflow around commission generation.
// Confirming a payment is the single trigger for generation; a generation
// failure never rolls a confirmed payment back, it surfaces as a warning with
// a retry path keyed by payment id.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"

	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
	"github.com/clinio/clinio_backend/internal/service/commission"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, in CreateInput) (*model.Payment, error)
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Payment, error)

	// Confirm moves a pending payment to confirmed and generates its
	// commissions. Re-confirming an already-confirmed payment is a no-op
	// that returns the existing state. The reception id is caller-supplied
	// and optional: reception rules only fire when one is given.
	Confirm(ctx context.Context, clinicID, paymentID, actorID uuid.UUID, receptionID *uuid.UUID) (*ConfirmResult, error)

	// Cancel moves the payment to cancelled and cascades to its pending
	// commissions. Paid commissions are never touched.
	Cancel(ctx context.Context, clinicID, paymentID, actorID uuid.UUID) (*model.Payment, error)

	// RetryGeneration re-runs generation for a confirmed payment after an
	// earlier failure. Safe to invoke repeatedly: an already-generated
	// payment returns its existing commissions with no new side effects.
	RetryGeneration(ctx context.Context, clinicID, paymentID, actorID uuid.UUID, receptionID *uuid.UUID, allowWithoutRule bool) (*ConfirmResult, error)
}

type CreateInput struct {
	ClinicID      uuid.UUID
	AppointmentID uuid.UUID
	Amount        decimal.Decimal
	Quantity      int
	Description   string

	// AllowWithoutRule carries the human acknowledgement captured at
	// appointment completion into later generation runs.
	AllowWithoutRule bool
	ActorID          uuid.UUID
}

type ConfirmResult struct {
	Payment     *model.Payment
	Commissions []model.Commission
	Total       decimal.Decimal

	// GenerationWarning is set when the payment was confirmed but
	// generation could not run to completion. The payment stays confirmed.
	GenerationWarning string

	WithoutProfessionalRule bool
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type billingService struct {
	store repository.Store
	comm  commission.Service
	nc    *nats.Conn
}

func New(store repository.Store, comm commission.Service, nc *nats.Conn) Service {
	return &billingService{store: store, comm: comm, nc: nc}
}

func (s *billingService) Create(ctx context.Context, in CreateInput) (*model.Payment, error) {
	if in.Amount.IsNegative() || in.Quantity < 0 {
		return nil, ErrInvalidPayment
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	if _, err := s.store.Appointments().GetByID(ctx, in.ClinicID, in.AppointmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	p := &model.Payment{
		ClinicID:         in.ClinicID,
		AppointmentID:    in.AppointmentID,
		Amount:           in.Amount,
		Quantity:         in.Quantity,
		Description:      in.Description,
		Status:           model.PaymentPending,
		AllowWithoutRule: in.AllowWithoutRule,
	}
	if err := s.store.Payments().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return p, nil
}

func (s *billingService) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Payment, error) {
	p, err := s.store.Payments().GetByID(ctx, clinicID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (s *billingService) Confirm(ctx context.Context, clinicID, paymentID, actorID uuid.UUID, receptionID *uuid.UUID) (*ConfirmResult, error) {
	p, err := s.Get(ctx, clinicID, paymentID)
	if err != nil {
		return nil, err
	}

	switch p.Status {
	case model.PaymentCancelled:
		return nil, ErrPaymentCancelled
	case model.PaymentConfirmed:
		// Already confirmed: no re-trigger, report existing state.
		existing, err := s.store.Commissions().ListByPayment(ctx, paymentID)
		if err != nil {
			return nil, fmt.Errorf("list commissions: %w", err)
		}
		return resultFrom(p, existing), nil
	}

	now := time.Now()
	p.Status = model.PaymentConfirmed
	p.ConfirmedAt = &now
	if err := s.store.Payments().Update(ctx, p); err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	if s.nc != nil {
		subject := fmt.Sprintf("clinio.payment.confirmed.%s", p.ID.String())
		_ = s.nc.Publish(subject, []byte(p.ClinicID.String()))
	}

	return s.generate(ctx, p, actorID, receptionID, p.AllowWithoutRule), nil
}

func (s *billingService) Cancel(ctx context.Context, clinicID, paymentID, actorID uuid.UUID) (*model.Payment, error) {
	p, err := s.Get(ctx, clinicID, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status == model.PaymentCancelled {
		return p, nil
	}

	now := time.Now()
	p.Status = model.PaymentCancelled
	p.CancelledAt = &now
	if err := s.store.Payments().Update(ctx, p); err != nil {
		return nil, fmt.Errorf("cancel payment: %w", err)
	}

	cancelled, err := s.store.Commissions().CancelByPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("cascade commission cancellation: %w", err)
	}
	if cancelled > 0 {
		slog.Info("payment cancellation cascaded to pending commissions",
			"payment_id", paymentID, "cancelled", cancelled, "actor_id", actorID)
	}

	if s.nc != nil {
		subject := fmt.Sprintf("clinio.payment.cancelled.%s", p.ID.String())
		_ = s.nc.Publish(subject, []byte(p.ClinicID.String()))
	}

	return p, nil
}

func (s *billingService) RetryGeneration(ctx context.Context, clinicID, paymentID, actorID uuid.UUID, receptionID *uuid.UUID, allowWithoutRule bool) (*ConfirmResult, error) {
	p, err := s.Get(ctx, clinicID, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentConfirmed {
		return nil, ErrPaymentNotConfirmed
	}

	if allowWithoutRule && !p.AllowWithoutRule {
		p.AllowWithoutRule = true
		if err := s.store.Payments().Update(ctx, p); err != nil {
			return nil, fmt.Errorf("record acknowledgement: %w", err)
		}
	}

	return s.generate(ctx, p, actorID, receptionID, p.AllowWithoutRule), nil
}

// generate runs the engine for one confirmed payment. All generation failures
// are converted to warnings: the payment is settled in the eyes of the human
// who confirmed it, so nothing here may undo that.
func (s *billingService) generate(ctx context.Context, p *model.Payment, actorID uuid.UUID, receptionID *uuid.UUID, allowWithoutRule bool) *ConfirmResult {
	appt, err := s.store.Appointments().GetByID(ctx, p.ClinicID, p.AppointmentID)
	if err != nil {
		slog.Warn("commission generation skipped: appointment lookup failed",
			"payment_id", p.ID, "appointment_id", p.AppointmentID, "err", err)
		return &ConfirmResult{
			Payment:           p,
			Total:             decimal.Zero,
			GenerationWarning: "commission generation failed: appointment not available; retry later",
		}
	}

	res, err := s.comm.Generate(ctx, commission.GenerateInput{
		ClinicID:         p.ClinicID,
		PaymentID:        p.ID,
		AppointmentID:    p.AppointmentID,
		ProfessionalID:   appt.ProfessionalID,
		Procedure:        appt.Procedure,
		Date:             appt.Date,
		SellerID:         appt.SellerID,
		ReceptionID:      receptionID,
		ServiceValue:     p.Amount,
		Quantity:         p.Quantity,
		AllowWithoutRule: allowWithoutRule,
		ActorID:          actorID,
	})
	if err != nil {
		switch {
		case errors.Is(err, commission.ErrDuplicateCommission):
			// Already generated, possibly by an earlier attempt or a
			// concurrent confirm. Return what exists; no new side effects.
			existing, lerr := s.store.Commissions().ListByPayment(ctx, p.ID)
			if lerr != nil {
				slog.Warn("listing existing commissions failed", "payment_id", p.ID, "err", lerr)
				return &ConfirmResult{Payment: p, Total: decimal.Zero}
			}
			return resultFrom(p, existing)
		case errors.Is(err, commission.ErrNoApplicableRule):
			return &ConfirmResult{
				Payment:                 p,
				Total:                   decimal.Zero,
				GenerationWarning:       "no professional commission rule applies; acknowledge to proceed without one",
				WithoutProfessionalRule: true,
			}
		default:
			slog.Warn("commission generation failed, payment stays confirmed",
				"payment_id", p.ID, "err", err)
			return &ConfirmResult{
				Payment:           p,
				Total:             decimal.Zero,
				GenerationWarning: "commission generation failed; retry later",
			}
		}
	}

	return &ConfirmResult{
		Payment:                 p,
		Commissions:             res.Commissions,
		Total:                   res.Total,
		WithoutProfessionalRule: res.WithoutProfessionalRule,
	}
}

func resultFrom(p *model.Payment, commissions []model.Commission) *ConfirmResult {
	total := decimal.Zero
	active := make([]model.Commission, 0, len(commissions))
	for _, c := range commissions {
		if c.Status == model.CommissionCancelled {
			continue
		}
		active = append(active, c)
		total = total.Add(c.Amount)
	}
	return &ConfirmResult{Payment: p, Commissions: active, Total: total}
}
