// Package usecase はsubscriptionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userentity "videotube_backend/internal/feature/user/domain/entity"
	userusecase "videotube_backend/internal/feature/user/usecase"
)

var (
	// ErrInvalidInput は必須フィールドの欠落や不正な入力値に対して返されます。
	ErrInvalidInput = errors.New("invalid input")

	// ErrChannelNotFound は指定されたusernameのチャンネルが存在しない場合に返されます。
	ErrChannelNotFound = errors.New("channel does not exist")
)

// SubscriptionRepository は購読関係の永続化層を抽象化します。
type SubscriptionRepository interface {
	// Exists は購読関係が存在するかを返します。
	Exists(ctx context.Context, subscriberID, channelID uint) (bool, error)
	// Create は購読関係を追加します。
	Create(ctx context.Context, subscriberID, channelID uint) error
	// Delete は購読関係を削除します。
	Delete(ctx context.Context, subscriberID, channelID uint) error
}

// ChannelFinder はusernameからチャンネル（ユーザー）を解決します。
type ChannelFinder interface {
	FindByUsername(ctx context.Context, username string) (*userentity.User, error)
}

// StatsInvalidator は購読数キャッシュの無効化を抽象化します。
type StatsInvalidator interface {
	Invalidate(ctx context.Context, subscriberID, channelID uint)
}

// subscriptionUsecase は購読のトグル操作を実装します。
type subscriptionUsecase struct {
	subs     SubscriptionRepository
	channels ChannelFinder
	stats    StatsInvalidator
}

// NewSubscriptionUsecase はsubscriptionUsecaseの新しいインスタンスを生成します。
// statsはnil可で、その場合キャッシュ無効化は行いません。
func NewSubscriptionUsecase(subs SubscriptionRepository, channels ChannelFinder, stats StatsInvalidator) *subscriptionUsecase {
	return &subscriptionUsecase{
		subs:     subs,
		channels: channels,
		stats:    stats,
	}
}

// Toggle は呼び出し元とチャンネルの購読関係を反転し、反転後の購読状態を返します。
// 自分自身のチャンネルは購読できません。
func (u *subscriptionUsecase) Toggle(ctx context.Context, callerID uint, username string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return false, fmt.Errorf("%w: username is missing", ErrInvalidInput)
	}

	channel, err := u.channels.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userusecase.ErrUserNotFound) {
			return false, ErrChannelNotFound
		}
		return false, err
	}
	if channel.ID == callerID {
		return false, fmt.Errorf("%w: cannot subscribe to your own channel", ErrInvalidInput)
	}

	exists, err := u.subs.Exists(ctx, callerID, channel.ID)
	if err != nil {
		return false, err
	}

	if exists {
		err = u.subs.Delete(ctx, callerID, channel.ID)
	} else {
		err = u.subs.Create(ctx, callerID, channel.ID)
	}
	if err != nil {
		return false, err
	}

	if u.stats != nil {
		u.stats.Invalidate(ctx, callerID, channel.ID)
	}
	return !exists, nil
}
