package model

// MaxPinAttempts is the number of consecutive failed PIN entries after
// which an account is locked.
const MaxPinAttempts = 3

// Account represents a card holder known to the branch.
type Account struct {
	Number         int64
	PINHash        string
	Balance        float64
	HolderName     string
	FailedAttempts int
	Locked         bool
}

// Clone returns an independent copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// AttemptsLeft reports how many PIN entries remain before lockout.
func (a *Account) AttemptsLeft() int {
	left := MaxPinAttempts - a.FailedAttempts
	if left < 0 {
		return 0
	}
	return left
}
