package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel mirrors the 'sys_sessions' table. The raw token is never stored, only its SHA-256 digest.
type SessionModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TokenHash string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	Domain    string     `gorm:"type:varchar(50);not null;index:idx_sys_sessions_owner"`
	UserID    int64      `gorm:"not null;index:idx_sys_sessions_owner"`
	LoginName string     `gorm:"type:varchar(64);not null"`
	Device    string     `gorm:"type:varchar(255)"`
	IPAddress string     `gorm:"type:varchar(64)"`
	Status    string     `gorm:"type:varchar(16);not null;default:active"`
	ExpiresAt *time.Time `gorm:"index"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sys_sessions"
}
