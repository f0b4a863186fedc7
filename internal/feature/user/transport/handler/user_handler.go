// Package handler はuserフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"videotube_backend/internal/api"
	"videotube_backend/internal/feature/user/domain/entity"
	"videotube_backend/internal/feature/user/transport/http/dto"
	"videotube_backend/internal/feature/user/usecase"
	jwtmw "videotube_backend/internal/platform/jwt"
)

// RefreshTokenCookie はリフレッシュトークンを運ぶクッキー名です。
const RefreshTokenCookie = "refreshToken"

// UserUsecase はユーザー操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, identifier, password string) (*entity.User, jwtmw.TokenPair, error)
	Logout(ctx context.Context, userID uint) error
	Refresh(ctx context.Context, incoming string) (jwtmw.TokenPair, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword, confirmNewPassword string) error
	UpdateAccount(ctx context.Context, userID uint, fullName, email string) (*entity.User, error)
	UpdateAvatar(ctx context.Context, userID uint, fh *multipart.FileHeader) (*entity.User, error)
	UpdateCoverImage(ctx context.Context, userID uint, fh *multipart.FileHeader) (*entity.User, error)
	ChannelProfile(ctx context.Context, username string, callerID uint) (*usecase.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID uint) ([]usecase.WatchHistoryItem, error)
}

// CookieOptions はトークンクッキーの発行設定です。
type CookieOptions struct {
	Domain        string
	Secure        bool
	AccessMaxAge  int // 秒
	RefreshMaxAge int // 秒
}

// UserHandler はユーザー操作のHTTPリクエストを処理します。
type UserHandler struct {
	users   UserUsecase
	cookies CookieOptions
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase, cookies CookieOptions) *UserHandler {
	return &UserHandler{users: users, cookies: cookies}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - multipartフォームからフィールドとファイル（avatar必須、coverImage任意）を取得
// - 重複時は409を、バリデーションエラー時は400を返却
// - 成功時は作成済みユーザー（機密フィールド除外）つきで201を返却
func (h *UserHandler) Register(c *gin.Context) {
	in := usecase.RegisterInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		FullName: c.PostForm("fullName"),
		Password: c.PostForm("password"),
	}
	if fh, err := c.FormFile("avatar"); err == nil {
		in.Avatar = fh
	}
	if fh, err := c.FormFile("coverImage"); err == nil {
		in.CoverImage = fh
	}

	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		slog.Warn("user registration failed", "error", err, "remote_addr", c.ClientIP())
		h.respondError(c, err)
		return
	}

	slog.Info("user registered", "username", user.Username, "remote_addr", c.ClientIP())
	api.OK(c, http.StatusCreated, user, "User registered successfully")
}

// Login はログインAPIエンドポイントを処理します。
// - usernameまたはemailで認証
// - 成功時はhttpOnlyクッキーを2つ設定し、ユーザーとトークンを返却
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		api.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	user, pair, err := h.users.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP())
		h.respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	slog.Info("user login successful", "username", user.Username, "remote_addr", c.ClientIP())
	api.OK(c, http.StatusOK, dto.LoginRes{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
}

// Logout はログアウトAPIエンドポイントを処理します。
// 保存済みリフレッシュトークンをクリアし、クッキーを削除します。
func (h *UserHandler) Logout(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.users.Logout(c.Request.Context(), user.ID); err != nil {
		h.respondError(c, err)
		return
	}

	h.clearAuthCookies(c)
	api.OK(c, http.StatusOK, gin.H{}, "User logged out")
}

// Refresh はトークンローテーションAPIエンドポイントを処理します。
// リフレッシュトークンはクッキーまたはボディから受け取ります。
func (h *UserHandler) Refresh(c *gin.Context) {
	incoming, _ := c.Cookie(RefreshTokenCookie)
	if incoming == "" {
		var req dto.RefreshReq
		if err := c.ShouldBindJSON(&req); err == nil {
			incoming = req.RefreshToken
		}
	}

	pair, err := h.users.Refresh(c.Request.Context(), incoming)
	if err != nil {
		slog.Warn("token refresh failed", "error", err, "remote_addr", c.ClientIP())
		h.respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	api.OK(c, http.StatusOK, dto.RefreshRes{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed")
}

// ChangePassword はパスワード変更APIエンドポイントを処理します。
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req dto.ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	err := h.users.ChangePassword(c.Request.Context(), user.ID,
		req.OldPassword, req.NewPassword, req.ConfirmNewPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{}, "Password changed successfully")
}

// CurrentUser は認証済みユーザー自身のプロフィールを返却します。
func (h *UserHandler) CurrentUser(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}
	api.OK(c, http.StatusOK, user, "User fetched successfully")
}

// UpdateAccount はfullName/emailの更新APIエンドポイントを処理します。
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req dto.UpdateAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, http.StatusBadRequest, "all fields are required")
		return
	}

	updated, err := h.users.UpdateAccount(c.Request.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	api.OK(c, http.StatusOK, updated, "Account details updated successfully")
}

// UpdateAvatar はアバター差し替えAPIエンドポイントを処理します。
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.users.UpdateAvatar, "Avatar updated successfully")
}

// UpdateCoverImage はカバー画像差し替えAPIエンドポイントを処理します。
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.users.UpdateCoverImage, "Cover image updated successfully")
}

// updateImage はアバター/カバー画像更新の共通処理です。
func (h *UserHandler) updateImage(c *gin.Context, field string,
	update func(ctx context.Context, userID uint, fh *multipart.FileHeader) (*entity.User, error),
	message string) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var fh *multipart.FileHeader
	if f, err := c.FormFile(field); err == nil {
		fh = f
	}

	updated, err := update(c.Request.Context(), user.ID, fh)
	if err != nil {
		h.respondError(c, err)
		return
	}
	api.OK(c, http.StatusOK, updated, message)
}

// ChannelProfile はチャンネルプロフィール集計APIエンドポイントを処理します。
func (h *UserHandler) ChannelProfile(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	profile, err := h.users.ChannelProfile(c.Request.Context(), c.Param("username"), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	api.OK(c, http.StatusOK, profile, "User channel fetched successfully")
}

// WatchHistory は視聴履歴取得APIエンドポイントを処理します。
// 履歴は認証済みユーザー自身のものに限定されます。
func (h *UserHandler) WatchHistory(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	history, err := h.users.WatchHistory(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	api.OK(c, http.StatusOK, history, "Watch history fetched successfully")
}

// respondError はユースケース層のエラーをHTTPステータスとエンベロープに変換します。
// 内部エラーの詳細はログにのみ残し、クライアントには汎用メッセージを返します。
func (h *UserHandler) respondError(c *gin.Context, err error) {
	var conflict *usecase.ConflictError
	switch {
	case errors.As(err, &conflict):
		api.Fail(c, http.StatusConflict, conflict.Error())
	case errors.Is(err, usecase.ErrInvalidInput):
		api.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrUserNotFound):
		api.Fail(c, http.StatusNotFound, "user does not exist")
	case errors.Is(err, usecase.ErrInvalidCredentials):
		api.Fail(c, http.StatusUnauthorized, "invalid user credentials")
	case errors.Is(err, usecase.ErrUnauthorized):
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
	case errors.Is(err, usecase.ErrInvalidRefreshToken):
		api.Fail(c, http.StatusUnauthorized, "invalid refresh token")
	case errors.Is(err, usecase.ErrTokenReused):
		api.Fail(c, http.StatusUnauthorized, "refresh token is expired or used")
	case errors.Is(err, usecase.ErrUploadFailed):
		api.Fail(c, http.StatusBadGateway, "media upload failed")
	default:
		slog.Error("user operation failed", "error", err)
		api.Fail(c, http.StatusInternalServerError, "something went wrong")
	}
}

// setAuthCookies はアクセス/リフレッシュトークンをhttpOnlyクッキーとして設定します。
func (h *UserHandler) setAuthCookies(c *gin.Context, pair jwtmw.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(jwtmw.AccessTokenCookie, pair.AccessToken,
		h.cookies.AccessMaxAge, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(RefreshTokenCookie, pair.RefreshToken,
		h.cookies.RefreshMaxAge, "/", h.cookies.Domain, h.cookies.Secure, true)
}

// clearAuthCookies はトークンクッキーを削除します。
func (h *UserHandler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(jwtmw.AccessTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
}
