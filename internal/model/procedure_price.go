package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProcedurePrice is one entry of a clinic's price catalog. Catalogs are often
// incomplete in practice, so price lookup deliberately tolerates misses (see
// the pricing service fallback chain).
type ProcedurePrice struct {
	ID       uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ClinicID uuid.UUID       `json:"clinic_id" gorm:"type:uuid;not null;index:idx_procedure_prices_clinic"`
	Name     string          `json:"name" gorm:"type:varchar(120);not null"`
	Value    decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null"`
	IsActive bool            `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProcedurePrice) TableName() string { return "procedure_prices" }

func (p *ProcedurePrice) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = newID()
	}
	return nil
}
