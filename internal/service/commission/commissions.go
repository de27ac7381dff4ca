package commission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
)

func (s *commissionService) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Commission, error) {
	c, err := s.store.Commissions().GetByID(ctx, clinicID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, fmt.Errorf("get commission: %w", err)
	}
	return c, nil
}

func (s *commissionService) List(ctx context.Context, clinicID uuid.UUID, f repository.CommissionFilter) ([]model.Commission, error) {
	out, err := s.store.Commissions().ListByClinic(ctx, clinicID, f)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	return out, nil
}

// MarkPaid is the payroll action: pending becomes paid, which is terminal.
func (s *commissionService) MarkPaid(ctx context.Context, clinicID, id, actorID uuid.UUID) (*model.Commission, error) {
	c, err := s.Get(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	switch c.Status {
	case model.CommissionPaid:
		return nil, ErrAlreadyPaid
	case model.CommissionCancelled:
		return nil, ErrNotPending
	}

	now := time.Now()
	c.Status = model.CommissionPaid
	c.PaidAt = &now
	if err := s.store.Commissions().Update(ctx, c); err != nil {
		return nil, fmt.Errorf("mark commission paid: %w", err)
	}

	if s.nc != nil {
		subject := fmt.Sprintf("clinio.commission.paid.%s", c.ID.String())
		_ = s.nc.Publish(subject, []byte(c.ClinicID.String()))
	}

	return c, nil
}

func (s *commissionService) Cancel(ctx context.Context, clinicID, id, actorID uuid.UUID) (*model.Commission, error) {
	c, err := s.Get(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	switch c.Status {
	case model.CommissionPaid:
		return nil, ErrAlreadyPaid
	case model.CommissionCancelled:
		return c, nil
	}

	c.Status = model.CommissionCancelled
	if err := s.store.Commissions().Update(ctx, c); err != nil {
		return nil, fmt.Errorf("cancel commission: %w", err)
	}
	return c, nil
}

func (s *commissionService) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	c, err := s.Get(ctx, clinicID, id)
	if err != nil {
		return err
	}
	if c.Status == model.CommissionPaid {
		return ErrAlreadyPaid
	}
	if err := s.store.Commissions().Delete(ctx, clinicID, id); err != nil {
		return fmt.Errorf("delete commission: %w", err)
	}
	return nil
}
