package model

import "time"

// TransactionKind tags a ledger record.
type TransactionKind string

const (
	KindBalanceInquiry TransactionKind = "Balance Inquiry"
	KindWithdrawal     TransactionKind = "Withdrawal"
)

// TimestampLayout is the layout ledger timestamps are written with.
const TimestampLayout = "2006-01-02 15:04:05"

// Transaction is a single immutable ledger record.
type Transaction struct {
	AccountNumber    int64
	Kind             TransactionKind
	Amount           float64
	RemainingBalance float64
	CreatedAt        time.Time
}

// Receipt describes the outcome of a dispensed withdrawal.
type Receipt struct {
	Notes   NoteBundle
	Amount  int64
	Balance float64
}
