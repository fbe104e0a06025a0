package entity

import "time"

// Session identifies the account the CLI is currently acting for
type Session struct {
	AccountID   uint64
	AccountName string
	IssuedAt    time.Time
}

// IsZero reports whether no account is bound to the session
func (s Session) IsZero() bool {
	return s.AccountID == 0
}
