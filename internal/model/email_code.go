package model

import "time"

// EmailCode is a one-time numeric verification code tied to an email
// address. Several rows may transiently exist for the same email; a
// new registration wipes the old ones first, and the newest matching
// row wins on lookup. Expired rows are checked at verification time,
// not swept in the background.
type EmailCode struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:120;index;not null"`
	Code      string `gorm:"size:6;not null"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (c *EmailCode) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}
