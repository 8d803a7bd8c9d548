package payroll

import "errors"

var (
	ErrRunNotFound       = errors.New("payroll run not found")
	ErrRunAlreadyExists  = errors.New("payroll run already exists for period")
	ErrInvalidTransition = errors.New("invalid payroll run status transition")
	ErrRunFrozen         = errors.New("payroll run is frozen")
	ErrGradeNotFound     = errors.New("pay grade not found")
	ErrTaxRuleNotFound   = errors.New("tax rule not found")
	ErrNoEmployees       = errors.New("no eligible employees for payroll run")
)
