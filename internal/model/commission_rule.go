package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BeneficiaryKeyGeneral is the grouping key for rules that apply to any
// beneficiary of their type (no specific beneficiary filter).
const BeneficiaryKeyGeneral = "general"

// CommissionRule defines how much a beneficiary earns under a condition.
// Rules never cross clinics. Nil filter fields mean "match any value of this
// dimension" (the wildcard); priority is derived from how many filters are
// set and is never hand-entered.
type CommissionRule struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ClinicID uuid.UUID `json:"clinic_id" gorm:"type:uuid;not null;index:idx_commission_rules_clinic"`

	BeneficiaryType BeneficiaryType `json:"beneficiary_type" gorm:"type:varchar(20);not null"`

	// ProfessionalID is the primary match key for professional-type rules and
	// a secondary filter for seller/reception rules tied to one professional's
	// appointments. Nil matches any professional.
	ProfessionalID *uuid.UUID `json:"professional_id,omitempty" gorm:"type:uuid"`

	// BeneficiaryID restricts seller/reception rules to one specific person.
	// Nil means any beneficiary of this type.
	BeneficiaryID *uuid.UUID `json:"beneficiary_id,omitempty" gorm:"type:uuid"`

	// Procedure is an exact procedure name, nil matches all procedures.
	Procedure *string `json:"procedure,omitempty" gorm:"type:varchar(120)"`

	// Weekday 0=Sunday..6=Saturday against the appointment's calendar date.
	Weekday *time.Weekday `json:"weekday,omitempty" gorm:"type:smallint"`

	CalcType CalcType        `json:"calc_type" gorm:"type:varchar(15);not null"`
	CalcUnit CalcUnit        `json:"calc_unit" gorm:"type:varchar(15);not null;default:'appointment'"`
	Value    decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null"`

	Priority int    `json:"priority" gorm:"not null"`
	IsActive bool   `json:"is_active" gorm:"not null;default:true"`
	Notes    string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (CommissionRule) TableName() string { return "commission_rules" }

func (r *CommissionRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = newID()
	}
	return nil
}

// BeneficiaryKey returns the resolution bucket for this rule: the specific
// beneficiary id, or "general" when the rule applies to anyone of its type.
func (r *CommissionRule) BeneficiaryKey() string {
	if r.BeneficiaryID != nil {
		return r.BeneficiaryID.String()
	}
	return BeneficiaryKeyGeneral
}
