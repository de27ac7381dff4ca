// Package repository defines the storage interfaces the services depend on,
// with one relational (GORM/Postgres) implementation and one in-memory
// implementation used by tests. The engine never touches *gorm.DB directly.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinio/clinio_backend/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist in the queried
	// clinic scope.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates the non-cancelled
	// commission uniqueness constraint (appointment, beneficiary type,
	// beneficiary key). Both implementations enforce it at the storage level.
	ErrDuplicate = errors.New("duplicate record")
)

// Rules is the persisted collection of commission rules per clinic.
type Rules interface {
	Create(ctx context.Context, rule *model.CommissionRule) error
	Update(ctx context.Context, rule *model.CommissionRule) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.CommissionRule, error)
	// ListByClinic returns all non-deleted rules, inactive included.
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]model.CommissionRule, error)
	// ListActiveByClinic returns the candidate set for resolution.
	ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]model.CommissionRule, error)
	Deactivate(ctx context.Context, clinicID, id uuid.UUID) error
	// Delete soft-deletes the rule. Callers must first check
	// Commissions.ExistsForRule: referenced rules are deactivated instead.
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
}

// CommissionFilter narrows commission listings.
type CommissionFilter struct {
	BeneficiaryID *uuid.UUID
	Status        *model.CommissionStatus
	From          *time.Time
	To            *time.Time
	Page          int
	PerPage       int
}

// Commissions stores computed commission records.
type Commissions interface {
	// CreateBatch persists all rows or none. A uniqueness violation on any
	// row returns ErrDuplicate and writes nothing.
	CreateBatch(ctx context.Context, commissions []*model.Commission) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Commission, error)
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]model.Commission, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID, f CommissionFilter) ([]model.Commission, error)
	// ExistsActive reports whether a non-cancelled commission exists for the
	// appointment and beneficiary type. This is the duplicate pre-check.
	ExistsActive(ctx context.Context, appointmentID uuid.UUID, bt model.BeneficiaryType) (bool, error)
	ExistsForRule(ctx context.Context, ruleID uuid.UUID) (bool, error)
	Update(ctx context.Context, c *model.Commission) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	// CancelByPayment moves this payment's pending commissions to cancelled
	// and returns how many were touched. Paid rows are never modified.
	CancelByPayment(ctx context.Context, paymentID uuid.UUID) (int, error)
}

// Payments stores payment records at the billing boundary.
type Payments interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Payment, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error)
	Update(ctx context.Context, p *model.Payment) error
}

// Appointments provides read plus status-update access to the scheduling
// collaborator.
type Appointments interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID, page, perPage int) ([]model.Appointment, error)
	Update(ctx context.Context, a *model.Appointment) error
}

// Staff is the read-only staff directory used to snapshot display names.
type Staff interface {
	Create(ctx context.Context, m *model.StaffMember) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.StaffMember, error)
}

// Prices is the procedure price table lookup.
type Prices interface {
	Create(ctx context.Context, p *model.ProcedurePrice) error
	// FindExact matches (clinic, exact name) on active entries.
	FindExact(ctx context.Context, clinicID uuid.UUID, name string) (*model.ProcedurePrice, error)
	// FindSubstring is the case-insensitive substring fallback over active
	// entries; the first match in name order wins.
	FindSubstring(ctx context.Context, clinicID uuid.UUID, name string) (*model.ProcedurePrice, error)
}

// Clinics is the tenant root lookup used by the clinic-header middleware.
type Clinics interface {
	Create(ctx context.Context, c *model.Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// Store aggregates all repositories plus the transaction runner. InTx runs fn
// against a store bound to one database transaction; if fn returns an error
// nothing written inside it survives.
type Store interface {
	Rules() Rules
	Commissions() Commissions
	Payments() Payments
	Appointments() Appointments
	Staff() Staff
	Prices() Prices
	Clinics() Clinics

	InTx(ctx context.Context, fn func(Store) error) error
}
