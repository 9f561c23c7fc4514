// Package refreshtoken keeps custody of issued refresh tokens and enforces
// single-use rotation. It is the only server-side mutable state on the token
// path: records are created on login/registration/refresh, flipped to
// revoked on rotation or logout, and never deleted so the trail stays
// auditable.
package refreshtoken

import "time"

// Record is a stored refresh token. At most one record with a given
// TokenValue is ever non-revoked and unexpired at a time.
type Record struct {
	ID         uint      `gorm:"primaryKey"`
	TokenValue string    `gorm:"uniqueIndex;size:512;not null"`
	OwnerID    uint      `gorm:"index;not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	Revoked    bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
}

// TableName sets the table name for GORM.
func (Record) TableName() string { return "refresh_tokens" }
