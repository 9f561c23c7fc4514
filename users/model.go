// Package users owns the identity records behind every principal. The auth
// service verifies credentials against this store, and the user service
// exposes it as CRUD behind the shared bearer middleware.
package users

import "time"

// Default role assigned at registration.
const DefaultRole = "USER"

// User is the stored identity.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName     string    `gorm:"size:255" json:"fullName"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:64;not null" json:"role"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName sets the table name for GORM.
func (User) TableName() string { return "users" }
