package commission

import "errors"

var (
	ErrRuleNotFound        = errors.New("commission rule not found")
	ErrInvalidRule         = errors.New("invalid commission rule")
	ErrCommissionNotFound  = errors.New("commission not found")
	ErrDuplicateCommission = errors.New("a non-cancelled commission already exists for this appointment and beneficiary")
	ErrNoApplicableRule    = errors.New("no professional commission rule applies")
	ErrInvalidValue        = errors.New("invalid service value or quantity")
	ErrAlreadyPaid         = errors.New("paid commissions are immutable")
	ErrNotPending          = errors.New("commission is not pending")
)
