// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// UserStatus is the account state of a console user.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User is a console account. LoginName is unique within a Domain, not globally.
type User struct {
	ID          int64      // Numeric primary key.
	Domain      string     // User namespace partition, e.g. "system" or "intranet".
	LoginName   string     // Name typed on the login form.
	NickName    string     // Display name.
	Email       string     // Contact email, optional.
	Phone       string     // Contact phone, optional.
	Status      UserStatus // Disabled accounts cannot log in.
	LastLoginIP string     // Client address of the last successful login.
	LastLoginAt *time.Time // Nil until the first successful login.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the account may log in.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Identity returns the identity triple carried in tokens.
func (u *User) Identity() Identity {
	return Identity{
		Domain:    u.Domain,
		UserID:    u.ID,
		LoginName: u.LoginName,
	}
}
