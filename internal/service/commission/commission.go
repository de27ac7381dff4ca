// Package commission implements the resolution and generation engine:
// rule administration, rule resolution per appointment, amount calculation
// and the transactional creation of commission records when a payment is
// confirmed.
package commission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"

	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Rule administration
	CreateRule(ctx context.Context, clinicID uuid.UUID, in RuleInput) (*model.CommissionRule, error)
	UpdateRule(ctx context.Context, clinicID, ruleID uuid.UUID, in RuleInput) (*model.CommissionRule, error)
	GetRule(ctx context.Context, clinicID, ruleID uuid.UUID) (*model.CommissionRule, error)
	ListRules(ctx context.Context, clinicID uuid.UUID) ([]model.CommissionRule, error)
	// DeleteRule soft-deletes the rule, or only deactivates it when
	// historical commissions reference it.
	DeleteRule(ctx context.Context, clinicID, ruleID uuid.UUID) error

	// Commission administration
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Commission, error)
	List(ctx context.Context, clinicID uuid.UUID, f repository.CommissionFilter) ([]model.Commission, error)
	MarkPaid(ctx context.Context, clinicID, id, actorID uuid.UUID) (*model.Commission, error)
	Cancel(ctx context.Context, clinicID, id, actorID uuid.UUID) (*model.Commission, error)
	Delete(ctx context.Context, clinicID, id uuid.UUID) error

	// Generation
	Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error)
}

// RuleInput is the caller-supplied shape for create and update. Priority is
// absent on purpose: it is always derived from the filters.
type RuleInput struct {
	BeneficiaryType model.BeneficiaryType
	ProfessionalID  *uuid.UUID
	BeneficiaryID   *uuid.UUID
	Procedure       *string
	Weekday         *time.Weekday
	CalcType        model.CalcType
	CalcUnit        model.CalcUnit
	Value           decimal.Decimal
	IsActive        bool
	Notes           string
}

// GenerateInput describes one confirmed payment to generate commissions for.
// Clinic and actor arrive explicitly; the engine holds no ambient session
// state.
type GenerateInput struct {
	ClinicID       uuid.UUID
	PaymentID      uuid.UUID
	AppointmentID  uuid.UUID
	ProfessionalID uuid.UUID
	Procedure      string
	Date           time.Time
	SellerID       *uuid.UUID
	ReceptionID    *uuid.UUID
	ServiceValue   decimal.Decimal
	Quantity       int

	// AllowWithoutRule is the human acknowledgement that bypasses the
	// no-professional-rule block.
	AllowWithoutRule bool
	ActorID          uuid.UUID
}

type GenerateResult struct {
	Commissions []model.Commission
	Total       decimal.Decimal

	// WithoutProfessionalRule is set when the no-rule block was bypassed and
	// no professional commission was produced.
	WithoutProfessionalRule bool
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type commissionService struct {
	store repository.Store
	nc    *nats.Conn
}

func New(store repository.Store, nc *nats.Conn) Service {
	return &commissionService{store: store, nc: nc}
}
