package model

// Closed enumerations used at the rule-evaluation switch points. Keeping
// these as named types (rather than free-form strings) lets the engine
// switch exhaustively over them.

// BeneficiaryType identifies which kind of staff member earns a commission.
type BeneficiaryType string

const (
	BeneficiaryProfessional BeneficiaryType = "professional"
	BeneficiarySeller       BeneficiaryType = "seller"
	BeneficiaryReception    BeneficiaryType = "reception"
)

func (b BeneficiaryType) Valid() bool {
	switch b {
	case BeneficiaryProfessional, BeneficiarySeller, BeneficiaryReception:
		return true
	}
	return false
}

// CalcType selects between percentage-of-service-value and fixed-amount rules.
type CalcType string

const (
	CalcPercentage CalcType = "percentage"
	CalcFixed      CalcType = "fixed"
)

func (t CalcType) Valid() bool {
	return t == CalcPercentage || t == CalcFixed
}

// CalcUnit is the quantity basis for fixed-type rules. Only meaningful when
// CalcType is fixed; UnitAppointment means one multiplier regardless of
// quantity, every other unit scales with it.
type CalcUnit string

const (
	UnitAppointment CalcUnit = "appointment"
	UnitML          CalcUnit = "ml"
	UnitArch        CalcUnit = "arch"
	UnitUnit        CalcUnit = "unit"
	UnitSession     CalcUnit = "session"
)

func (u CalcUnit) Valid() bool {
	switch u {
	case UnitAppointment, UnitML, UnitArch, UnitUnit, UnitSession:
		return true
	}
	return false
}

// ScalesByQuantity reports whether a fixed-type rule using this unit
// multiplies its value by the appointment quantity.
func (u CalcUnit) ScalesByQuantity() bool {
	return u != UnitAppointment
}

// CommissionStatus lifecycle: pending -> paid (terminal) | cancelled (terminal).
type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "pending"
	CommissionPaid      CommissionStatus = "paid"
	CommissionCancelled CommissionStatus = "cancelled"
)

func (s CommissionStatus) Valid() bool {
	switch s {
	case CommissionPending, CommissionPaid, CommissionCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s CommissionStatus) Terminal() bool {
	return s == CommissionPaid || s == CommissionCancelled
}

// PaymentStatus lifecycle: pending -> confirmed | cancelled.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentConfirmed, PaymentCancelled:
		return true
	}
	return false
}

// AppointmentStatus is the boundary collaborator's lifecycle.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// StaffRole mirrors the staff directory's role field.
type StaffRole string

const (
	RoleProfessional StaffRole = "professional"
	RoleSeller       StaffRole = "seller"
	RoleReception    StaffRole = "reception"
	RoleAdmin        StaffRole = "admin"
)
