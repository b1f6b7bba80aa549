package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// FriendshipStatus defines the state of a relationship between two users.
type FriendshipStatus string

const (
	// StatusPending means a friend request has been sent but not yet accepted.
	StatusPending FriendshipStatus = "pending"

	// StatusAccepted means the friend request was accepted, and the users are now friends.
	StatusAccepted FriendshipStatus = "accepted"
)

// Friendship represents the relationship between two users. The record is
// stored directionally (FromUserID sent the request, ToUserID received it)
// but the PairKey unique index makes the pair itself unique regardless of
// direction, so two concurrent requests for the same pair cannot both land.
// Rows are hard-deleted on rejection or removal, freeing the pair again.
type Friendship struct {
	ID         uint             `gorm:"primarykey"`
	FromUserID uint             `gorm:"not null;index"`
	ToUserID   uint             `gorm:"not null;index"`
	PairKey    string           `gorm:"size:64;not null;uniqueIndex"`
	Status     FriendshipStatus `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	FromUser User `gorm:"foreignKey:FromUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ToUser   User `gorm:"foreignKey:ToUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// PairKey builds the order-independent signature of a user pair.
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// BeforeCreate fills in the pair signature so callers cannot forget it.
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	f.PairKey = PairKey(f.FromUserID, f.ToUserID)
	return nil
}
