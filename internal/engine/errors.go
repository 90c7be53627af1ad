package engine

import "errors"

// Operation errors. Callers match with errors.Is; every mutating operation
// is all-or-nothing, so any of these means no state changed.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInactive          = errors.New("shop item is inactive")
	ErrInsufficientFunds = errors.New("insufficient points")
)
