package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("account not found")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientCash   = errors.New("machine has insufficient cash")
	ErrNoteMixUnavailable = errors.New("amount cannot be dispensed with available notes")
	ErrCancelled          = errors.New("cancelled")
)

// PersistenceError reports a failed durable write. The failing store is
// named in Op so the operator knows which file or table to inspect.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
