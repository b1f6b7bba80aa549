package models

import "time"

// ResetToken is a single-use password-reset capability. It is hard-deleted
// atomically on redemption; tokens that expire unredeemed are never purged,
// redemption just refuses them. Several live tokens may coexist for one user.
type ResetToken struct {
	ID        uint      `gorm:"primarykey"`
	Token     string    `gorm:"size:128;not null;index"`
	UserID    uint      `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
