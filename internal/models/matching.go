package models

import (
	"time"

	"gorm.io/gorm"
)

// MatchingStatus defines the state of a pairwise matching session.
type MatchingStatus string

const (
	// MatchingPending means the session is open and both sides are still
	// recording approvals.
	MatchingPending MatchingStatus = "pending"

	// MatchingCompleted means the session has finished. Nothing in this
	// service flips a session to completed; the trigger belongs to the
	// calling application.
	MatchingCompleted MatchingStatus = "completed"
)

// Show is a candidate title inside a matching session, mirroring the shape
// the front end receives from its movie database.
type Show struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	GenreIDs     []int   `json:"genre_ids"`
	VoteAverage  float64 `json:"vote_average"`
}

// MatchingSession is a pairwise session over a shared candidate show list.
// The partial unique index allows at most one pending session per pair while
// leaving completed sessions behind as history.
type MatchingSession struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	User1ID   uint           `gorm:"not null;index" json:"user1Id"`
	User2ID   uint           `gorm:"not null;index" json:"user2Id"`
	PairKey   string         `gorm:"size:64;not null;uniqueIndex:idx_matching_pending_pair,where:status = 'pending'" json:"-"`
	Status    MatchingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`

	Shows         []Show `gorm:"serializer:json;not null" json:"shows"`
	User1Approved []Show `gorm:"serializer:json" json:"user1ApprovedShows"`
	User2Approved []Show `gorm:"serializer:json" json:"user2ApprovedShows"`

	User1 User `gorm:"foreignKey:User1ID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	User2 User `gorm:"foreignKey:User2ID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// BeforeCreate fills in the pair signature so callers cannot forget it.
func (m *MatchingSession) BeforeCreate(tx *gorm.DB) error {
	m.PairKey = PairKey(m.User1ID, m.User2ID)
	return nil
}
