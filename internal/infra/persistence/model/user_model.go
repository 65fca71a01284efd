package model

import (
	"time"

	"gorm.io/gorm"
)

// UserModel mirrors the 'sys_users' table. Login names are unique per domain.
type UserModel struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Domain      string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_sys_users_domain_login_name"`
	LoginName   string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_sys_users_domain_login_name"`
	NickName    string     `gorm:"type:varchar(64)"`
	Email       string     `gorm:"type:varchar(255)"`
	Phone       string     `gorm:"type:varchar(32)"`
	Status      string     `gorm:"type:varchar(16);not null;default:active"`
	LastLoginIP string     `gorm:"type:varchar(64)"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "sys_users"
}

// CredentialModel mirrors the 'sys_user_credentials' table, one row per user.
type CredentialModel struct {
	Domain       string `gorm:"type:varchar(50);primaryKey"`
	UserID       int64  `gorm:"primaryKey"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (CredentialModel) TableName() string {
	return "sys_user_credentials"
}
