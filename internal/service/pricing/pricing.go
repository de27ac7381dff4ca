// Package pricing resolves a procedure's service value from the clinic's
// price table. Catalogs are often incomplete, so lookup is deliberately
// tolerant: exact name, then case-insensitive substring, then a configured
// default.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinio/clinio_backend/config"
	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
)

// Source tells the caller which step of the fallback chain produced a value.
type Source string

const (
	SourceExact     Source = "exact"
	SourceSubstring Source = "substring"
	SourceDefault   Source = "default"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// ValueFor never fails on a missing catalog entry; only storage errors
	// surface.
	ValueFor(ctx context.Context, clinicID uuid.UUID, procedure string) (decimal.Decimal, Source, error)

	SetPrice(ctx context.Context, clinicID uuid.UUID, name string, value decimal.Decimal) (*model.ProcedurePrice, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type pricingService struct {
	store        repository.Store
	defaultValue decimal.Decimal
}

func New(store repository.Store, cfg *config.Config) Service {
	return &pricingService{
		store:        store,
		defaultValue: decimal.NewFromFloat(cfg.Pricing.DefaultValue),
	}
}

func (s *pricingService) ValueFor(ctx context.Context, clinicID uuid.UUID, procedure string) (decimal.Decimal, Source, error) {
	p, err := s.store.Prices().FindExact(ctx, clinicID, procedure)
	if err == nil {
		return p.Value, SourceExact, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return decimal.Zero, "", fmt.Errorf("price lookup: %w", err)
	}

	p, err = s.store.Prices().FindSubstring(ctx, clinicID, procedure)
	if err == nil {
		return p.Value, SourceSubstring, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return decimal.Zero, "", fmt.Errorf("price lookup: %w", err)
	}

	return s.defaultValue, SourceDefault, nil
}

func (s *pricingService) SetPrice(ctx context.Context, clinicID uuid.UUID, name string, value decimal.Decimal) (*model.ProcedurePrice, error) {
	if name == "" || value.IsNegative() {
		return nil, ErrInvalidPrice
	}
	p := &model.ProcedurePrice{
		ClinicID: clinicID,
		Name:     name,
		Value:    value,
		IsActive: true,
	}
	if err := s.store.Prices().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create price entry: %w", err)
	}
	return p, nil
}
