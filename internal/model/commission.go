package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Commission is a computed, owed (or already paid) amount for one beneficiary
// of one appointment. The calculation fields are a snapshot of the rule that
// was applied, so later rule edits never affect historical records.
//
// At most one non-cancelled commission may exist per (appointment_id,
// beneficiary_type, beneficiary_key); a partial unique index created during
// migration enforces this at the storage layer so concurrent generation
// attempts cannot both succeed.
type Commission struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ClinicID      uuid.UUID `json:"clinic_id" gorm:"type:uuid;not null;index:idx_commissions_clinic"`
	AppointmentID uuid.UUID `json:"appointment_id" gorm:"type:uuid;not null;index:idx_commissions_appointment"`
	PaymentID     uuid.UUID `json:"payment_id" gorm:"type:uuid;not null;index:idx_commissions_payment"`
	RuleID        uuid.UUID `json:"rule_id" gorm:"type:uuid;not null"`

	BeneficiaryType BeneficiaryType `json:"beneficiary_type" gorm:"type:varchar(20);not null"`
	// BeneficiaryID is the person actually being paid.
	BeneficiaryID uuid.UUID `json:"beneficiary_id" gorm:"type:uuid;not null"`
	// BeneficiaryKey is the rule's resolution bucket (specific id or
	// "general"); materialized so the uniqueness constraint can cover it.
	BeneficiaryKey string `json:"beneficiary_key" gorm:"type:varchar(40);not null"`
	// BeneficiaryName is snapshotted from the staff directory at generation
	// time and never re-read afterwards.
	BeneficiaryName string `json:"beneficiary_name" gorm:"type:varchar(120)"`

	Procedure    string          `json:"procedure" gorm:"type:varchar(120);not null"`
	ServiceValue decimal.Decimal `json:"service_value" gorm:"type:numeric(12,2);not null"`
	Quantity     int             `json:"quantity" gorm:"not null;default:1"`

	// Snapshot of the calculation actually applied.
	CalcType  CalcType        `json:"calc_type" gorm:"type:varchar(15);not null"`
	CalcUnit  CalcUnit        `json:"calc_unit" gorm:"type:varchar(15);not null"`
	CalcValue decimal.Decimal `json:"calc_value" gorm:"type:numeric(12,2);not null"`

	Amount decimal.Decimal  `json:"amount" gorm:"type:numeric(12,2);not null"`
	Status CommissionStatus `json:"status" gorm:"type:varchar(15);not null;default:'pending'"`

	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

func (Commission) TableName() string { return "commissions" }

func (c *Commission) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = newID()
	}
	if c.Status == "" {
		c.Status = CommissionPending
	}
	return nil
}
