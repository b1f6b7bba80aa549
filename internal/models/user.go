package models

import "gorm.io/gorm"

// AuthProvider identifies how a user's identity is verified.
type AuthProvider string

const (
	// ProviderLocal means the user signed up with an email and password.
	ProviderLocal AuthProvider = "local"

	// ProviderGoogle means the account was created from a verified Google
	// identity and carries no password hash.
	ProviderGoogle AuthProvider = "google"
)

// User represents a user in the system.
type User struct {
	gorm.Model
	Name         string       `gorm:"size:255;not null"`
	Email        string       `gorm:"size:255;unique;not null"`
	PasswordHash string       `gorm:"size:255"`
	AuthProvider AuthProvider `gorm:"type:varchar(20);not null;default:'local'"`

	// SHA-256 hash of the last issued refresh token. Overwritten on every
	// login, so only the most recent refresh token is honored.
	RefreshTokenHash string `gorm:"size:255"`
}
