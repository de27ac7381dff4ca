package appointment

import "errors"

var (
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrInvalidAppointment   = errors.New("invalid appointment")
	ErrProfessionalNotFound = errors.New("professional not found in clinic staff")
	ErrAlreadyCompleted     = errors.New("appointment is already completed")
	ErrAppointmentCancelled = errors.New("appointment is cancelled")
)
