package errors

import (
	stdErrors "errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"locked", ErrAccountLocked},
		{"invalid credentials", ErrInvalidCredentials},
		{"invalid amount", ErrInvalidAmount},
		{"insufficient funds", ErrInsufficientFunds},
		{"insufficient cash", ErrInsufficientCash},
		{"note mix", ErrNoteMixUnavailable},
		{"cancelled", ErrCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := &PersistenceError{Op: "accounts", Err: cause}

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to match")
	}

	var pErr *PersistenceError
	if !stdErrors.As(error(err), &pErr) {
		t.Fatal("expected errors.As to find PersistenceError")
	}
	if pErr.Op != "accounts" {
		t.Fatalf("unexpected op: %s", pErr.Op)
	}
	if err.Error() != "persist accounts: disk full" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
