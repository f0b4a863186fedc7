// Package adapters はsubscriptionフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"

	"videotube_backend/internal/feature/subscription/domain/entity"
	"videotube_backend/internal/feature/subscription/usecase"
)

// subscriptionGorm はSubscriptionRepositoryインターフェースのGORM実装です。
type subscriptionGorm struct {
	db *gorm.DB
}

var _ usecase.SubscriptionRepository = (*subscriptionGorm)(nil)

// NewSubscriptionGorm はsubscriptionGormの新しいインスタンスを生成します。
func NewSubscriptionGorm(db *gorm.DB) *subscriptionGorm {
	return &subscriptionGorm{db: db}
}

// Exists は購読関係が存在するかを返します。
func (r *subscriptionGorm) Exists(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&count).Error
	return count > 0, err
}

// Create は購読関係を追加します。
func (r *subscriptionGorm) Create(ctx context.Context, subscriberID, channelID uint) error {
	sub := entity.Subscription{
		SubscriberID: subscriberID,
		ChannelID:    channelID,
	}
	return r.db.WithContext(ctx).Create(&sub).Error
}

// Delete は購読関係を削除します。
func (r *subscriptionGorm) Delete(ctx context.Context, subscriberID, channelID uint) error {
	return r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&entity.Subscription{}).Error
}
