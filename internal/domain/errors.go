package domain

import "errors"

var (
	ErrNotFound              = errors.New("ticket type not found")
	ErrInsufficientInventory = errors.New("insufficient tickets available")
	ErrOverRelease           = errors.New("cannot release more tickets than reserved")
	ErrOverConfirm           = errors.New("cannot confirm more tickets than reserved")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrWindowViolation       = errors.New("sale start date must be before sale end date")
	ErrConflict              = errors.New("conflict")
)
