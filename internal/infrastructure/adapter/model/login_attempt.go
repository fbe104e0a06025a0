package model

import (
	"time"
)

// LoginAttempt counts consecutive failed logins for a name.
// Names are not a foreign key: attempts against unknown names are counted too.
type LoginAttempt struct {
	Name          string    `gorm:"primaryKey;size:64"`
	Failures      int       `gorm:"not null;default:0"`
	LastFailureAt time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for LoginAttempt
func (LoginAttempt) TableName() string {
	return "login_attempts"
}
