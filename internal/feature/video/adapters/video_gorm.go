// Package adapters はvideoフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	userentity "videotube_backend/internal/feature/user/domain/entity"
	"videotube_backend/internal/feature/video/domain/entity"
	"videotube_backend/internal/feature/video/usecase"
)

// videoGorm はVideoRepositoryインターフェースのGORM実装です。
type videoGorm struct {
	db *gorm.DB
}

var _ usecase.VideoRepository = (*videoGorm)(nil)

// NewVideoGorm は指定されたgorm.DB接続でvideoGormの新しいインスタンスを生成します。
func NewVideoGorm(db *gorm.DB) *videoGorm {
	return &videoGorm{db: db}
}

// Create は動画をデータベースに追加します。
func (r *videoGorm) Create(ctx context.Context, v *entity.Video) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// FindByID はIDで動画を取得します。公開状態は考慮しません。
func (r *videoGorm) FindByID(ctx context.Context, id uint) (*entity.Video, error) {
	var v entity.Video
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrVideoNotFound
		}
		return nil, err
	}
	return &v, nil
}

// List は公開済み動画を検索条件つきで取得し、総件数も返します。
// ソートキーはユースケース側でホワイトリスト検証済みです。
func (r *videoGorm) List(ctx context.Context, params usecase.ListParams) ([]entity.Video, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Video{}).
		Where("is_published = ?", true)

	if params.Query != "" {
		query = query.Where("title LIKE ?", "%"+params.Query+"%")
	}
	if params.OwnerID != 0 {
		query = query.Where("owner_id = ?", params.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []entity.Video
	err := query.
		Order(params.SortBy + " " + params.SortType).
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// UpdateDetails はタイトル・説明・サムネイルURLを更新し、更新後の動画を返します。
func (r *videoGorm) UpdateDetails(ctx context.Context, id uint, title, description, thumbnailURL string) (*entity.Video, error) {
	updates := map[string]interface{}{
		"title":       title,
		"description": description,
	}
	if thumbnailURL != "" {
		updates["thumbnail_url"] = thumbnailURL
	}
	err := r.db.WithContext(ctx).Model(&entity.Video{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Delete は動画と、それを参照する視聴履歴エントリを同一トランザクションで削除します。
func (r *videoGorm) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", id).Delete(&userentity.WatchEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Video{}).Error
	})
}

// SetPublished は公開フラグを更新します。
func (r *videoGorm) SetPublished(ctx context.Context, id uint, published bool) error {
	return r.db.WithContext(ctx).Model(&entity.Video{}).
		Where("id = ?", id).
		Update("is_published", published).Error
}

// IncrementViews は視聴回数を原子的に1増やします。
func (r *videoGorm) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&entity.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}
