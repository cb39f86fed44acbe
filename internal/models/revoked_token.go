package models

import "time"

// RevokedToken records a logged-out bearer token until it would have expired.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time
	JTI       string    `gorm:"column:jti;uniqueIndex;size:64;not null"`
	ClientID  uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}
