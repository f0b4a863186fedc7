package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"videotube_backend/internal/feature/user/domain/entity"
	jwtmw "videotube_backend/internal/platform/jwt"
)

const (
	// avatarFolder / coverFolder はメディアストア上の格納先プレフィックスです。
	avatarFolder = "avatars"
	coverFolder  = "covers"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。ユニーク制約違反の場合、
	// ErrUsernameTaken または ErrEmailTaken を返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByID は指定されたIDのユーザーを取得します。
	// 存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByUsername は小文字化済みのusernameでユーザーを取得します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByUsernameOrEmail はusernameまたはemailのどちらかに一致するユーザーを取得します。
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)

	// UpdateRefreshToken は保存済みリフレッシュトークンを上書きします。
	// 空文字列でクリア（ログアウト）します。上書きのみで追記はしません。
	UpdateRefreshToken(ctx context.Context, userID uint, token string) error

	// UpdatePassword はパスワードハッシュを更新します。
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error

	// UpdateAccount はfullNameとemailを更新し、更新後のユーザーを返します。
	UpdateAccount(ctx context.Context, userID uint, fullName, email string) (*entity.User, error)

	// UpdateAvatar / UpdateCoverImage は画像URLを更新し、更新後のユーザーを返します。
	UpdateAvatar(ctx context.Context, userID uint, url string) (*entity.User, error)
	UpdateCoverImage(ctx context.Context, userID uint, url string) (*entity.User, error)

	// WatchHistory は視聴履歴を新しい順に、動画とオーナー射影つきで返します。
	WatchHistory(ctx context.Context, userID uint) ([]WatchHistoryItem, error)
}

// ChannelStatsRepository はチャンネルプロフィール集計の購読関係クエリを抽象化します。
type ChannelStatsRepository interface {
	// CountSubscribers はchannelIDを購読しているユーザー数を返します。
	CountSubscribers(ctx context.Context, channelID uint) (int64, error)
	// CountSubscribedTo はsubscriberIDが購読しているチャンネル数を返します。
	CountSubscribedTo(ctx context.Context, subscriberID uint) (int64, error)
	// IsSubscribed はsubscriberIDがchannelIDを購読しているかを返します。
	IsSubscribed(ctx context.Context, subscriberID, channelID uint) (bool, error)
}

// MediaUploader はメディアリレー（外部オブジェクトストレージ）を抽象化します。
type MediaUploader interface {
	// Upload はファイルをアップロードし、恒久URLを返します。
	Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error)
}

// TokenService はトークンペアの発行とリフレッシュトークンの検証を抽象化します。
type TokenService interface {
	IssuePair(user *entity.User) (jwtmw.TokenPair, error)
	VerifyRefresh(token string) (uint, error)
}

// RegisterInput は新規登録の入力です。Avatarは必須、CoverImageは任意です。
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *multipart.FileHeader
	CoverImage *multipart.FileHeader
}

// ChannelProfile はチャンネルプロフィール集計の射影結果です。
// フィールドはこの7つに限定され、パスワード等は含まれません。
type ChannelProfile struct {
	FullName                  string `json:"fullName"`
	Username                  string `json:"username"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
	AvatarURL                 string `json:"avatarUrl"`
	Email                     string `json:"email"`
}

// WatchHistoryOwner は視聴履歴内の動画オーナーの縮小射影です。
type WatchHistoryOwner struct {
	FullName  string `json:"fullName"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// WatchHistoryItem は視聴履歴1件分の動画情報です。
type WatchHistoryItem struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	VideoURL     string            `json:"videoUrl"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	Duration     float64           `json:"duration"`
	Views        int64             `json:"views"`
	Owner        WatchHistoryOwner `json:"owner"`
	WatchedAt    time.Time         `json:"watchedAt"`
}

// userUsecase はユーザー関連のビジネスロジックを実装します。
type userUsecase struct {
	users  UserRepository
	stats  ChannelStatsRepository
	media  MediaUploader
	tokens TokenService
}

// NewUserUsecase はuserUsecaseの新しいインスタンスを生成します。
func NewUserUsecase(users UserRepository, stats ChannelStatsRepository,
	media MediaUploader, tokens TokenService) *userUsecase {
	return &userUsecase{
		users:  users,
		stats:  stats,
		media:  media,
		tokens: tokens,
	}
}

// Register は新規ユーザーを登録します。
// アバターのアップロード成功がユーザー作成の前提条件です。カバー画像は任意で、
// 欠落やアップロード失敗があっても登録自体は失敗しません。
func (u *userUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	password := strings.TrimSpace(in.Password)

	if username == "" || email == "" || fullName == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}
	if in.Avatar == nil {
		return nil, fmt.Errorf("%w: avatar file is required", ErrInvalidInput)
	}

	// 重複チェック。レースで抜けた場合はCreate側のユニーク制約で検出される
	if existing, err := u.users.FindByUsernameOrEmail(ctx, username, email); err == nil {
		if existing.Email == email {
			return nil, &ConflictError{Field: "email", Value: email}
		}
		return nil, &ConflictError{Field: "username", Value: username}
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	avatarURL, err := u.media.Upload(ctx, in.Avatar, avatarFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	var coverURL string
	if in.CoverImage != nil {
		coverURL, err = u.media.Upload(ctx, in.CoverImage, coverFolder)
		if err != nil {
			// カバー画像は任意のため、失敗しても登録は続行する
			slog.Warn("cover image upload failed", "username", username, "error", err)
			coverURL = ""
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		Password:      string(hashed),
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}
	if err := u.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			return nil, &ConflictError{Field: "username", Value: username}
		case errors.Is(err, ErrEmailTaken):
			return nil, &ConflictError{Field: "email", Value: email}
		}
		return nil, err
	}

	return sanitize(user), nil
}

// Login はユーザーを認証し、トークンペアを発行して保存済みリフレッシュトークンを上書きします。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *userUsecase) Login(ctx context.Context, identifier, password string) (*entity.User, jwtmw.TokenPair, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, jwtmw.TokenPair{}, fmt.Errorf("%w: username or email is required", ErrInvalidInput)
	}

	user, err := u.users.FindByUsernameOrEmail(ctx, strings.ToLower(identifier), identifier)

	// ユーザー未検出時のタイミング攻撃緩和用ダミーハッシュ
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, jwtmw.TokenPair{}, ErrUserNotFound
		}
		return nil, jwtmw.TokenPair{}, err
	}
	if compareErr != nil {
		return nil, jwtmw.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := u.tokens.IssuePair(user)
	if err != nil {
		return nil, jwtmw.TokenPair{}, fmt.Errorf("failed to generate tokens: %w", err)
	}

	// 上書き保存により、以前発行されたリフレッシュトークンは無効になる
	if err := u.users.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, jwtmw.TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return sanitize(user), pair, nil
}

// Logout は保存済みリフレッシュトークンをクリアします。
// 以後、ログアウト前に発行されたリフレッシュトークンでのローテーションは失敗します。
func (u *userUsecase) Logout(ctx context.Context, userID uint) error {
	return u.users.UpdateRefreshToken(ctx, userID, "")
}

// Refresh はリフレッシュトークンをローテーションします。
// 署名・期限の検証 → ユーザーの存在確認 → 保存済みトークンとのバイト単位比較を経て、
// 新しいペアを発行し保存済みトークンを差し替えます。比較に失敗した場合は
// ローテーション済みトークンの再利用とみなしErrTokenReusedを返します。
func (u *userUsecase) Refresh(ctx context.Context, incoming string) (jwtmw.TokenPair, error) {
	if incoming == "" {
		return jwtmw.TokenPair{}, ErrUnauthorized
	}

	userID, err := u.tokens.VerifyRefresh(incoming)
	if err != nil {
		return jwtmw.TokenPair{}, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return jwtmw.TokenPair{}, ErrInvalidRefreshToken
		}
		return jwtmw.TokenPair{}, err
	}

	if user.RefreshToken != incoming {
		return jwtmw.TokenPair{}, ErrTokenReused
	}

	pair, err := u.tokens.IssuePair(user)
	if err != nil {
		return jwtmw.TokenPair{}, fmt.Errorf("failed to generate tokens: %w", err)
	}
	if err := u.users.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return jwtmw.TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return pair, nil
}

// ChangePassword は旧パスワードの検証後にパスワードハッシュを更新します。
// 確認用パスワードが一致しない場合、保存済みハッシュには一切触れません。
func (u *userUsecase) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword, confirmNewPassword string) error {
	if newPassword != confirmNewPassword {
		return fmt.Errorf("%w: password confirmation does not match", ErrInvalidInput)
	}
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: new password is required", ErrInvalidInput)
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return u.users.UpdatePassword(ctx, userID, string(hashed))
}

// UpdateAccount はfullNameとemailを更新します。両方必須です。
func (u *userUsecase) UpdateAccount(ctx context.Context, userID uint, fullName, email string) (*entity.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}

	user, err := u.users.UpdateAccount(ctx, userID, fullName, email)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, &ConflictError{Field: "email", Value: email}
		}
		return nil, err
	}
	return sanitize(user), nil
}

// UpdateAvatar はアバターをアップロードしてURLを差し替えます。
func (u *userUsecase) UpdateAvatar(ctx context.Context, userID uint, fh *multipart.FileHeader) (*entity.User, error) {
	if fh == nil {
		return nil, fmt.Errorf("%w: avatar file is missing", ErrInvalidInput)
	}
	url, err := u.media.Upload(ctx, fh, avatarFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	user, err := u.users.UpdateAvatar(ctx, userID, url)
	if err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

// UpdateCoverImage はカバー画像をアップロードしてURLを差し替えます。
func (u *userUsecase) UpdateCoverImage(ctx context.Context, userID uint, fh *multipart.FileHeader) (*entity.User, error) {
	if fh == nil {
		return nil, fmt.Errorf("%w: cover image file is missing", ErrInvalidInput)
	}
	url, err := u.media.Upload(ctx, fh, coverFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	user, err := u.users.UpdateCoverImage(ctx, userID, url)
	if err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

// ChannelProfile はチャンネルプロフィールを集計します。
// 小文字化したusernameで照合し、購読関係を双方向に集計して
// {fullName, username, subscribersCount, channelsSubscribedToCount,
// isSubscribed, avatar, email} のみを射影します。
func (u *userUsecase) ChannelProfile(ctx context.Context, username string, callerID uint) (*ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, fmt.Errorf("%w: username is missing", ErrInvalidInput)
	}

	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	subscribers, err := u.stats.CountSubscribers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	subscribedTo, err := u.stats.CountSubscribedTo(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	isSubscribed := false
	if callerID != 0 {
		isSubscribed, err = u.stats.IsSubscribed(ctx, callerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ChannelProfile{
		FullName:                  user.FullName,
		Username:                  user.Username,
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              isSubscribed,
		AvatarURL:                 user.AvatarURL,
		Email:                     user.Email,
	}, nil
}

// WatchHistory は認証済みユーザー自身の視聴履歴を返します。
func (u *userUsecase) WatchHistory(ctx context.Context, userID uint) ([]WatchHistoryItem, error) {
	return u.users.WatchHistory(ctx, userID)
}

// sanitize はレスポンスに含めてはならない機密フィールドをクリアします。
func sanitize(user *entity.User) *entity.User {
	user.Password = ""
	user.RefreshToken = ""
	return user
}
