package billing

import "errors"

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentCancelled    = errors.New("payment is cancelled")
	ErrPaymentNotConfirmed = errors.New("payment is not confirmed")
	ErrInvalidPayment      = errors.New("invalid payment")
	ErrAppointmentNotFound = errors.New("appointment not found")
)
