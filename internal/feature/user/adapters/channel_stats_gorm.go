package adapters

import (
	"context"

	"gorm.io/gorm"

	"videotube_backend/internal/feature/subscription/domain/entity"
	"videotube_backend/internal/feature/user/usecase"
)

// channelStatsGorm はChannelStatsRepositoryインターフェースのGORM実装です。
// チャンネルプロフィール集計のため購読テーブルを双方向にカウントします。
type channelStatsGorm struct {
	db *gorm.DB
}

var _ usecase.ChannelStatsRepository = (*channelStatsGorm)(nil)

// NewChannelStatsGorm はchannelStatsGormの新しいインスタンスを生成します。
func NewChannelStatsGorm(db *gorm.DB) *channelStatsGorm {
	return &channelStatsGorm{db: db}
}

// CountSubscribers はchannel == user.id の購読数を返します。
func (r *channelStatsGorm) CountSubscribers(ctx context.Context, channelID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error
	return count, err
}

// CountSubscribedTo はsubscriber == user.id の購読数を返します。
func (r *channelStatsGorm) CountSubscribedTo(ctx context.Context, subscriberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Count(&count).Error
	return count, err
}

// IsSubscribed は呼び出し元がチャンネルを購読しているかを返します。
func (r *channelStatsGorm) IsSubscribed(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&count).Error
	return count > 0, err
}
