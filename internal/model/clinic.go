package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Clinic is the tenant root. Every engine operation is scoped to one clinic,
// passed explicitly by the caller.
type Clinic struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string    `json:"name" gorm:"type:varchar(120);not null"`
	IsActive bool      `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Clinic) TableName() string { return "clinics" }

func (c *Clinic) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = newID()
	}
	return nil
}

// StaffMember is the staff directory entry used to snapshot a display name at
// generation time.
type StaffMember struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ClinicID uuid.UUID `json:"clinic_id" gorm:"type:uuid;not null;index:idx_staff_members_clinic"`
	Name     string    `json:"name" gorm:"type:varchar(120);not null"`
	Email    string    `json:"email" gorm:"type:varchar(254)"`
	Role     StaffRole `json:"role" gorm:"type:varchar(20);not null"`
	IsActive bool      `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StaffMember) TableName() string { return "staff_members" }

func (m *StaffMember) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = newID()
	}
	return nil
}
