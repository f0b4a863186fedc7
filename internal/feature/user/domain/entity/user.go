// Package entity defines the domain entities for the user feature.
package entity

import "time"

// User represents a registered account in the system.
// It contains authentication credentials and channel profile metadata.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`

	// Username is the unique, lowercased handle used for channel lookup.
	Username string `gorm:"uniqueIndex;size:64;not null" json:"username"`

	// Email is the user's email address. It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// FullName is the display name shown on the channel profile.
	FullName string `gorm:"size:255;not null" json:"fullName"`

	// Password is the bcrypt hash of the user's password.
	// It is never serialized into any response.
	Password string `gorm:"size:255;not null" json:"-"`

	// AvatarURL points to the uploaded avatar on the media store. Required.
	AvatarURL string `gorm:"size:512;not null" json:"avatarUrl"`

	// CoverImageURL points to the uploaded cover image. Optional.
	CoverImageURL string `gorm:"size:512" json:"coverImageUrl"`

	// RefreshToken is the single currently valid refresh token for the
	// account, or empty when logged out. At most one refresh token is valid
	// per user at any time; every login and rotation overwrites it.
	// It is never serialized into any response.
	RefreshToken string `gorm:"size:1024" json:"-"`

	// CreatedAt is the timestamp when the user registered.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}
