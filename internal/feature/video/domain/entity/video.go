// Package entity defines the domain entities for the video feature.
package entity

import "time"

// Video represents a published media record.
type Video struct {
	// ID is the unique identifier for the video.
	ID uint `gorm:"primaryKey" json:"id"`

	// Title is the display title. Required on publish.
	Title string `gorm:"size:255;not null" json:"title"`

	// Description is the free-form description. Required on publish.
	Description string `gorm:"type:text;not null" json:"description"`

	// VideoURL points to the uploaded media file on the media store.
	VideoURL string `gorm:"size:512;not null" json:"videoUrl"`

	// ThumbnailURL points to the uploaded thumbnail. Optional.
	ThumbnailURL string `gorm:"size:512" json:"thumbnailUrl,omitempty"`

	// Duration is the video length in seconds.
	Duration float64 `json:"duration"`

	// Views counts how many times the video has been fetched.
	Views int64 `gorm:"not null;default:0" json:"views"`

	// IsPublished controls visibility: unpublished videos are only visible
	// to their owner.
	IsPublished bool `gorm:"not null;default:true" json:"isPublished"`

	// OwnerID references the user who published the video.
	OwnerID uint `gorm:"index;not null" json:"ownerId"`

	// CreatedAt is the timestamp when the video was published.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp when the video was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}
