package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment is the boundary collaborator the engine reads from: one
// clinical procedure for one patient, performed by one professional,
// optionally brought in by a seller.
type Appointment struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ClinicID       uuid.UUID `json:"clinic_id" gorm:"type:uuid;not null;index:idx_appointments_clinic"`
	ProfessionalID uuid.UUID `json:"professional_id" gorm:"type:uuid;not null;index:idx_appointments_professional"`
	PatientID      uuid.UUID `json:"patient_id" gorm:"type:uuid;not null"`
	SellerID       *uuid.UUID `json:"seller_id,omitempty" gorm:"type:uuid"`

	Procedure string `json:"procedure" gorm:"type:varchar(120);not null"`
	// Quantity in the procedure's calculation unit (ml, arch, ...).
	Quantity int `json:"quantity" gorm:"not null;default:1"`

	// Date is the calendar day of the procedure; day-of-week rule filters are
	// evaluated against it with no timezone shifting.
	Date time.Time `json:"date" gorm:"type:date;not null"`

	Status     AppointmentStatus `json:"status" gorm:"type:varchar(15);not null;default:'scheduled'"`
	LeadSource string            `json:"lead_source,omitempty" gorm:"type:varchar(60)"`
	Notes      string            `json:"notes,omitempty" gorm:"type:text"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Appointment) TableName() string { return "appointments" }

func (a *Appointment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = newID()
	}
	if a.Status == "" {
		a.Status = AppointmentScheduled
	}
	return nil
}
