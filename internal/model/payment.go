package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment tracks the billing side of a completed appointment. Its transition
// into confirmed is the single trigger point for commission generation;
// confirmed and cancelled are terminal.
type Payment struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ClinicID      uuid.UUID `json:"clinic_id" gorm:"type:uuid;not null;index:idx_payments_clinic"`
	AppointmentID uuid.UUID `json:"appointment_id" gorm:"type:uuid;not null;index:idx_payments_appointment"`

	Amount   decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Quantity int             `json:"quantity" gorm:"not null;default:1"`

	Description string        `json:"description" gorm:"type:varchar(500)"`
	Status      PaymentStatus `json:"status" gorm:"type:varchar(15);not null;default:'pending'"`

	// AllowWithoutRule records the explicit human acknowledgement, captured at
	// appointment completion, that generation may proceed even when no
	// professional rule resolves.
	AllowWithoutRule bool `json:"allow_without_rule" gorm:"not null;default:false"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = PaymentPending
	}
	return nil
}
