package entity

import "time"

// Challenge is a pending captcha. It is valid for one verification only.
type Challenge struct {
	ID        string
	Answer    string
	ExpiresAt time.Time
}

// IsExpiredAt reports whether the challenge can no longer be answered.
func (c *Challenge) IsExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
