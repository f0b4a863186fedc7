package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"videotube_backend/internal/feature/video/domain/entity"
)

const (
	videoFolder     = "videos"
	thumbnailFolder = "thumbnails"

	defaultPageSize = 10
	maxPageSize     = 100
)

// sortColumns は一覧取得で許可するソートキーの集合です。
// 任意のカラム名を受け付けるとSQLインジェクションの余地になるため、ホワイトリストで制限します。
var sortColumns = map[string]struct{}{
	"created_at": {},
	"views":      {},
	"duration":   {},
	"title":      {},
}

// ListParams は動画一覧取得の検索・ページング条件です。
type ListParams struct {
	Page     int
	Limit    int
	Query    string // タイトル部分一致
	OwnerID  uint   // 0なら全オーナー
	SortBy   string
	SortType string // asc | desc
}

// VideoRepository は動画エンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type VideoRepository interface {
	Create(ctx context.Context, video *entity.Video) error

	// FindByID は公開状態に関わらず動画を取得します。可視性の判定はユースケース側で行います。
	FindByID(ctx context.Context, id uint) (*entity.Video, error)

	// List は公開済み動画を条件つきで取得し、総件数も返します。
	List(ctx context.Context, params ListParams) ([]entity.Video, int64, error)

	// UpdateDetails はタイトル・説明・サムネイルURLを更新し、更新後の動画を返します。
	// thumbnailURLが空文字列の場合、サムネイルは変更しません。
	UpdateDetails(ctx context.Context, id uint, title, description, thumbnailURL string) (*entity.Video, error)

	// Delete は動画と、それを参照する視聴履歴エントリを削除します。
	Delete(ctx context.Context, id uint) error

	// SetPublished は公開フラグを更新します。
	SetPublished(ctx context.Context, id uint, published bool) error

	// IncrementViews は視聴回数を1増やします。
	IncrementViews(ctx context.Context, id uint) error
}

// MediaUploader はメディアリレー（外部オブジェクトストレージ）を抽象化します。
type MediaUploader interface {
	Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error)
}

// WatchRecorder は視聴履歴への記録を抽象化します。userフィーチャーのリポジトリが実装します。
type WatchRecorder interface {
	RecordWatch(ctx context.Context, userID, videoID uint) error
}

// PublishInput は動画公開の入力です。VideoFileは必須、Thumbnailは任意です。
type PublishInput struct {
	Title       string
	Description string
	Duration    float64
	VideoFile   *multipart.FileHeader
	Thumbnail   *multipart.FileHeader
}

// UpdateInput は動画更新の入力です。いずれかのフィールドが指定されている必要があります。
type UpdateInput struct {
	Title       string
	Description string
	Thumbnail   *multipart.FileHeader
}

// videoUsecase は動画関連のビジネスロジックを実装します。
type videoUsecase struct {
	videos  VideoRepository
	media   MediaUploader
	watches WatchRecorder
}

// NewVideoUsecase はvideoUsecaseの新しいインスタンスを生成します。
func NewVideoUsecase(videos VideoRepository, media MediaUploader, watches WatchRecorder) *videoUsecase {
	return &videoUsecase{
		videos:  videos,
		media:   media,
		watches: watches,
	}
}

// Publish は動画ファイルをアップロードし、呼び出し元を所有者として動画レコードを作成します。
// サムネイルは任意で、欠落やアップロード失敗があっても公開自体は失敗しません。
func (u *videoUsecase) Publish(ctx context.Context, ownerID uint, in PublishInput) (*entity.Video, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrInvalidInput)
	}
	if in.VideoFile == nil {
		return nil, fmt.Errorf("%w: video file is required", ErrInvalidInput)
	}

	videoURL, err := u.media.Upload(ctx, in.VideoFile, videoFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	var thumbnailURL string
	if in.Thumbnail != nil {
		thumbnailURL, err = u.media.Upload(ctx, in.Thumbnail, thumbnailFolder)
		if err != nil {
			// サムネイルは任意のため、失敗しても公開は続行する
			slog.Warn("thumbnail upload failed", "owner_id", ownerID, "error", err)
			thumbnailURL = ""
		}
	}

	video := &entity.Video{
		Title:        title,
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Duration:     in.Duration,
		IsPublished:  true,
		OwnerID:      ownerID,
	}
	if err := u.videos.Create(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// Get は動画を取得します。非公開動画は所有者にのみ見えます。
// 取得成功時は視聴回数を加算し、呼び出し元の視聴履歴に記録します。
func (u *videoUsecase) Get(ctx context.Context, callerID, videoID uint) (*entity.Video, error) {
	video, err := u.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished && video.OwnerID != callerID {
		// 非公開動画の存在を漏らさない
		return nil, ErrVideoNotFound
	}

	// 視聴回数と履歴はベストエフォート。失敗しても取得は成功させる
	if err := u.videos.IncrementViews(ctx, video.ID); err != nil {
		slog.Warn("failed to increment views", "video_id", video.ID, "error", err)
	} else {
		video.Views++
	}
	if err := u.watches.RecordWatch(ctx, callerID, video.ID); err != nil {
		slog.Warn("failed to record watch history", "user_id", callerID, "video_id", video.ID, "error", err)
	}

	return video, nil
}

// List は公開済み動画を検索条件つきで返します。
// ページングの既定値は page=1, limit=10 で、limitは100が上限です。
func (u *videoUsecase) List(ctx context.Context, params ListParams) ([]entity.Video, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = defaultPageSize
	}
	if params.Limit > maxPageSize {
		params.Limit = maxPageSize
	}
	if _, ok := sortColumns[params.SortBy]; !ok {
		params.SortBy = "created_at"
	}
	if params.SortType != "asc" {
		params.SortType = "desc"
	}
	return u.videos.List(ctx, params)
}

// Update はタイトル・説明・サムネイルを更新します。所有者のみ実行できます。
func (u *videoUsecase) Update(ctx context.Context, callerID, videoID uint, in UpdateInput) (*entity.Video, error) {
	video, err := u.requireOwner(ctx, callerID, videoID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" && description == "" && in.Thumbnail == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if title == "" {
		title = video.Title
	}
	if description == "" {
		description = video.Description
	}

	var thumbnailURL string
	if in.Thumbnail != nil {
		thumbnailURL, err = u.media.Upload(ctx, in.Thumbnail, thumbnailFolder)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
	}

	return u.videos.UpdateDetails(ctx, video.ID, title, description, thumbnailURL)
}

// Delete は動画を削除します。所有者のみ実行できます。
func (u *videoUsecase) Delete(ctx context.Context, callerID, videoID uint) error {
	video, err := u.requireOwner(ctx, callerID, videoID)
	if err != nil {
		return err
	}
	return u.videos.Delete(ctx, video.ID)
}

// TogglePublish は公開フラグを反転し、反転後の値を返します。所有者のみ実行できます。
func (u *videoUsecase) TogglePublish(ctx context.Context, callerID, videoID uint) (bool, error) {
	video, err := u.requireOwner(ctx, callerID, videoID)
	if err != nil {
		return false, err
	}
	published := !video.IsPublished
	if err := u.videos.SetPublished(ctx, video.ID, published); err != nil {
		return false, err
	}
	return published, nil
}

// requireOwner は動画を取得し、呼び出し元が所有者であることを検証します。
func (u *videoUsecase) requireOwner(ctx context.Context, callerID, videoID uint) (*entity.Video, error) {
	video, err := u.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	return video, nil
}
