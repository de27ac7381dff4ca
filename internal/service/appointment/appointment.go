// Package appointment manages the scheduling collaborator around the
// commission engine: booking, completion and the handoff into billing when a
// completed appointment gets its payment.
package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
	"github.com/clinio/clinio_backend/internal/service/billing"
	"github.com/clinio/clinio_backend/internal/service/pricing"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	ProfessionalID uuid.UUID
	PatientID      uuid.UUID
	SellerID       *uuid.UUID
	Procedure      string
	Quantity       int
	Date           time.Time
	LeadSource     string
	Notes          string
}

type CompleteRequest struct {
	// AllowWithoutRule records the human acknowledgement to proceed even if
	// no professional commission rule applies. It is carried onto the
	// payment and consulted at confirmation time.
	AllowWithoutRule bool
	ActorID          uuid.UUID
}

type CompleteResult struct {
	Appointment *model.Appointment
	Payment     *model.Payment

	// PriceSource tells how the service value was obtained (exact catalog
	// hit, substring fallback or the configured default).
	PriceSource pricing.Source
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Book(ctx context.Context, clinicID uuid.UUID, req BookRequest) (*model.Appointment, error)
	GetByID(ctx context.Context, clinicID, apptID uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, clinicID uuid.UUID, page, perPage int) ([]model.Appointment, error)

	// Complete marks the appointment done, prices its procedure and opens a
	// pending payment for it. Confirming that payment later is what
	// triggers commission generation.
	Complete(ctx context.Context, clinicID, apptID uuid.UUID, req CompleteRequest) (*CompleteResult, error)

	Cancel(ctx context.Context, clinicID, apptID, actorID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	store   repository.Store
	pricing pricing.Service
	billing billing.Service
}

func New(store repository.Store, pricingSvc pricing.Service, billingSvc billing.Service) Service {
	return &appointmentService{store: store, pricing: pricingSvc, billing: billingSvc}
}

func (s *appointmentService) Book(ctx context.Context, clinicID uuid.UUID, req BookRequest) (*model.Appointment, error) {
	if req.Procedure == "" || req.ProfessionalID == uuid.Nil || req.PatientID == uuid.Nil {
		return nil, ErrInvalidAppointment
	}
	if req.Quantity < 0 {
		return nil, ErrInvalidAppointment
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if _, err := s.store.Staff().GetByID(ctx, clinicID, req.ProfessionalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("get professional: %w", err)
	}

	a := &model.Appointment{
		ClinicID:       clinicID,
		ProfessionalID: req.ProfessionalID,
		PatientID:      req.PatientID,
		SellerID:       req.SellerID,
		Procedure:      req.Procedure,
		Quantity:       req.Quantity,
		Date:           req.Date,
		Status:         model.AppointmentScheduled,
		LeadSource:     req.LeadSource,
		Notes:          req.Notes,
	}
	if err := s.store.Appointments().Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return a, nil
}

func (s *appointmentService) GetByID(ctx context.Context, clinicID, apptID uuid.UUID) (*model.Appointment, error) {
	a, err := s.store.Appointments().GetByID(ctx, clinicID, apptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (s *appointmentService) List(ctx context.Context, clinicID uuid.UUID, page, perPage int) ([]model.Appointment, error) {
	out, err := s.store.Appointments().ListByClinic(ctx, clinicID, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

func (s *appointmentService) Complete(ctx context.Context, clinicID, apptID uuid.UUID, req CompleteRequest) (*CompleteResult, error) {
	a, err := s.GetByID(ctx, clinicID, apptID)
	if err != nil {
		return nil, err
	}

	switch a.Status {
	case model.AppointmentCompleted:
		return nil, ErrAlreadyCompleted
	case model.AppointmentCancelled:
		return nil, ErrAppointmentCancelled
	}

	value, source, err := s.pricing.ValueFor(ctx, clinicID, a.Procedure)
	if err != nil {
		return nil, fmt.Errorf("price procedure: %w", err)
	}

	now := time.Now()
	a.Status = model.AppointmentCompleted
	a.CompletedAt = &now
	if err := s.store.Appointments().Update(ctx, a); err != nil {
		return nil, fmt.Errorf("complete appointment: %w", err)
	}

	p, err := s.billing.Create(ctx, billing.CreateInput{
		ClinicID:         clinicID,
		AppointmentID:    a.ID,
		Amount:           serviceTotal(value, a.Quantity),
		Quantity:         a.Quantity,
		Description:      a.Procedure,
		AllowWithoutRule: req.AllowWithoutRule,
		ActorID:          req.ActorID,
	})
	if err != nil {
		return nil, fmt.Errorf("open payment: %w", err)
	}

	return &CompleteResult{Appointment: a, Payment: p, PriceSource: source}, nil
}

func (s *appointmentService) Cancel(ctx context.Context, clinicID, apptID, actorID uuid.UUID) error {
	a, err := s.GetByID(ctx, clinicID, apptID)
	if err != nil {
		return err
	}
	if a.Status == model.AppointmentCompleted {
		return ErrAlreadyCompleted
	}
	if a.Status == model.AppointmentCancelled {
		return nil
	}

	a.Status = model.AppointmentCancelled
	if err := s.store.Appointments().Update(ctx, a); err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	return nil
}

// serviceTotal is the catalog value times quantity; the per-unit price is
// what the catalog stores.
func serviceTotal(unitValue decimal.Decimal, quantity int) decimal.Decimal {
	if quantity <= 1 {
		return unitValue
	}
	return unitValue.Mul(decimal.NewFromInt(int64(quantity)))
}
