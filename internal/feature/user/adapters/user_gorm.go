// Package adapters はuserフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"videotube_backend/internal/feature/user/domain/entity"
	"videotube_backend/internal/feature/user/usecase"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// ユニーク制約違反はusecase.ErrUsernameTaken / usecase.ErrEmailTakenに変換します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByUsername は小文字化済みusernameでユーザーを取得します。
func (r *userGorm) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByUsernameOrEmail はusernameまたはemailのどちらかに一致するユーザーを取得します。
func (r *userGorm) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error) {
	var u entity.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateRefreshToken は保存済みリフレッシュトークンを上書きします。
func (r *userGorm) UpdateRefreshToken(ctx context.Context, userID uint, token string) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error
}

// UpdatePassword はパスワードハッシュを更新します。
func (r *userGorm) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", userID).
		Update("password", passwordHash).Error
}

// UpdateAccount はfullNameとemailを更新し、更新後のユーザーを返します。
func (r *userGorm) UpdateAccount(ctx context.Context, userID uint, fullName, email string) (*entity.User, error) {
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"full_name": fullName, "email": email}).Error
	if err != nil {
		return nil, translateDuplicate(err)
	}
	return r.FindByID(ctx, userID)
}

// UpdateAvatar はアバターURLを更新し、更新後のユーザーを返します。
func (r *userGorm) UpdateAvatar(ctx context.Context, userID uint, url string) (*entity.User, error) {
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", userID).
		Update("avatar_url", url).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, userID)
}

// UpdateCoverImage はカバー画像URLを更新し、更新後のユーザーを返します。
func (r *userGorm) UpdateCoverImage(ctx context.Context, userID uint, url string) (*entity.User, error) {
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", userID).
		Update("cover_image_url", url).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, userID)
}

// RecordWatch は視聴履歴にエントリを記録します。
// 同じ動画の再視聴はwatched_atを更新して履歴の先頭に移動させます。
func (r *userGorm) RecordWatch(ctx context.Context, userID, videoID uint) error {
	entry := entity.WatchEntry{
		UserID:    userID,
		VideoID:   videoID,
		WatchedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watched_at"}),
	}).Create(&entry).Error
}

// watchHistoryRow は視聴履歴クエリのスキャン先です。
type watchHistoryRow struct {
	ID             uint
	Title          string
	Description    string
	VideoURL       string
	ThumbnailURL   string
	Duration       float64
	Views          int64
	OwnerFullName  string
	OwnerUsername  string
	OwnerAvatarURL string
	WatchedAt      time.Time
}

// WatchHistory は視聴履歴の動画IDをVideoレコードに結合し、
// 各動画にオーナーの縮小射影を付与して新しい順に返します。
func (r *userGorm) WatchHistory(ctx context.Context, userID uint) ([]usecase.WatchHistoryItem, error) {
	var rows []watchHistoryRow
	err := r.db.WithContext(ctx).
		Table("watch_entries").
		Select(`videos.id, videos.title, videos.description, videos.video_url,
			videos.thumbnail_url, videos.duration, videos.views,
			users.full_name AS owner_full_name, users.username AS owner_username,
			users.avatar_url AS owner_avatar_url, watch_entries.watched_at`).
		Joins("JOIN videos ON videos.id = watch_entries.video_id").
		Joins("JOIN users ON users.id = videos.owner_id").
		Where("watch_entries.user_id = ?", userID).
		Order("watch_entries.watched_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]usecase.WatchHistoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, usecase.WatchHistoryItem{
			ID:           row.ID,
			Title:        row.Title,
			Description:  row.Description,
			VideoURL:     row.VideoURL,
			ThumbnailURL: row.ThumbnailURL,
			Duration:     row.Duration,
			Views:        row.Views,
			Owner: usecase.WatchHistoryOwner{
				FullName:  row.OwnerFullName,
				Username:  row.OwnerUsername,
				AvatarURL: row.OwnerAvatarURL,
			},
			WatchedAt: row.WatchedAt,
		})
	}
	return items, nil
}

// translateDuplicate はユニーク制約違反をユースケース層のエラーに変換します。
// PostgreSQLはエラーコード23505と制約名で、テスト用SQLiteはメッセージ文字列で判定します。
func translateDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "username") {
			return usecase.ErrUsernameTaken
		}
		if strings.Contains(pgErr.ConstraintName, "email") {
			return usecase.ErrEmailTaken
		}
		return usecase.ErrUsernameTaken
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key") {
		if strings.Contains(msg, "email") {
			return usecase.ErrEmailTaken
		}
		return usecase.ErrUsernameTaken
	}
	return err
}
