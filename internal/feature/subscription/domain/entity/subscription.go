// Package entity defines the domain entities for the subscription feature.
package entity

import "time"

// Subscription links a subscriber to a channel. Both sides reference users:
// a channel is simply another user's account. The pair is unique, so a user
// can subscribe to a given channel at most once.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"uniqueIndex:idx_subscriber_channel;not null" json:"subscriberId"`
	ChannelID    uint      `gorm:"uniqueIndex:idx_subscriber_channel;index;not null" json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}
