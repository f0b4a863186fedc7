package entity

import "time"

// WatchEntry records that a user watched a video. The history keeps a single
// row per user+video pair; re-watching bumps WatchedAt so the history stays
// ordered by most recent view.
type WatchEntry struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_video;index;not null"`
	VideoID   uint      `gorm:"uniqueIndex:idx_user_video;not null"`
	WatchedAt time.Time `gorm:"index;not null"`
}
