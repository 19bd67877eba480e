package model

import "time"

// Session binds an authenticated account to the current interaction.
// It lives in memory only, from successful login until logout.
type Session struct {
	AccountNumber int64
	HolderName    string
	StartedAt     time.Time
}
