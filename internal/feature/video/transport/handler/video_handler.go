// Package handler はvideoフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"videotube_backend/internal/api"
	"videotube_backend/internal/feature/video/domain/entity"
	"videotube_backend/internal/feature/video/transport/http/dto"
	"videotube_backend/internal/feature/video/usecase"
	jwtmw "videotube_backend/internal/platform/jwt"
)

// VideoUsecase は動画操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type VideoUsecase interface {
	Publish(ctx context.Context, ownerID uint, in usecase.PublishInput) (*entity.Video, error)
	Get(ctx context.Context, callerID, videoID uint) (*entity.Video, error)
	List(ctx context.Context, params usecase.ListParams) ([]entity.Video, int64, error)
	Update(ctx context.Context, callerID, videoID uint, in usecase.UpdateInput) (*entity.Video, error)
	Delete(ctx context.Context, callerID, videoID uint) error
	TogglePublish(ctx context.Context, callerID, videoID uint) (bool, error)
}

// VideoHandler は動画操作のHTTPリクエストを処理します。
type VideoHandler struct {
	videos VideoUsecase
}

// NewVideoHandler はVideoHandlerの新しいインスタンスを生成します。
func NewVideoHandler(videos VideoUsecase) *VideoHandler {
	return &VideoHandler{videos: videos}
}

// Publish は動画公開APIエンドポイントを処理します。
// - multipartフォームからtitle/description/durationとファイル（videoFile必須、thumbnail任意）を取得
// - 成功時は作成済み動画つきで201を返却
func (h *VideoHandler) Publish(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	duration, _ := strconv.ParseFloat(c.PostForm("duration"), 64)
	in := usecase.PublishInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Duration:    duration,
	}
	if fh, err := c.FormFile("videoFile"); err == nil {
		in.VideoFile = fh
	}
	if fh, err := c.FormFile("thumbnail"); err == nil {
		in.Thumbnail = fh
	}

	video, err := h.videos.Publish(c.Request.Context(), user.ID, in)
	if err != nil {
		slog.Warn("video publish failed", "error", err, "owner_id", user.ID)
		h.respondError(c, err)
		return
	}

	slog.Info("video published", "video_id", video.ID, "owner_id", user.ID)
	api.OK(c, http.StatusCreated, video, "Video published successfully")
}

// Get は動画取得APIエンドポイントを処理します。
// 取得は視聴とみなされ、視聴回数と視聴履歴が更新されます。
func (h *VideoHandler) Get(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}
	videoID, ok := h.videoID(c)
	if !ok {
		return
	}

	video, err := h.videos.Get(c.Request.Context(), user.ID, videoID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	api.OK(c, http.StatusOK, video, "Video fetched successfully")
}

// List は動画一覧APIエンドポイントを処理します。
// クエリパラメータ: page, limit, query, sortBy, sortType, userId
func (h *VideoHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	ownerID, _ := strconv.ParseUint(c.Query("userId"), 10, 32)

	videos, total, err := h.videos.List(c.Request.Context(), usecase.ListParams{
		Page:     page,
		Limit:    limit,
		Query:    c.Query("query"),
		OwnerID:  uint(ownerID),
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	api.OK(c, http.StatusOK, dto.VideoListRes{
		Videos: videos,
		Page:   page,
		Limit:  limit,
		Total:  total,
	}, "Videos fetched successfully")
}

// Update は動画更新APIエンドポイントを処理します。所有者のみ実行できます。
func (h *VideoHandler) Update(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}
	videoID, ok := h.videoID(c)
	if !ok {
		return
	}

	in := usecase.UpdateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	if fh, err := c.FormFile("thumbnail"); err == nil {
		in.Thumbnail = fh
	}

	video, err := h.videos.Update(c.Request.Context(), user.ID, videoID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	api.OK(c, http.StatusOK, video, "Video updated successfully")
}

// Delete は動画削除APIエンドポイントを処理します。所有者のみ実行できます。
func (h *VideoHandler) Delete(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}
	videoID, ok := h.videoID(c)
	if !ok {
		return
	}

	if err := h.videos.Delete(c.Request.Context(), user.ID, videoID); err != nil {
		h.respondError(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{}, "Video deleted successfully")
}

// TogglePublish は公開フラグ反転APIエンドポイントを処理します。所有者のみ実行できます。
func (h *VideoHandler) TogglePublish(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}
	videoID, ok := h.videoID(c)
	if !ok {
		return
	}

	published, err := h.videos.TogglePublish(c.Request.Context(), user.ID, videoID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	api.OK(c, http.StatusOK, gin.H{"isPublished": published}, "Publish status toggled")
}

// videoID はパスパラメータから動画IDをパースします。
func (h *VideoHandler) videoID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		api.Fail(c, http.StatusBadRequest, "invalid video id")
		return 0, false
	}
	return uint(id), true
}

// respondError はユースケース層のエラーをHTTPステータスとエンベロープに変換します。
func (h *VideoHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		api.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrVideoNotFound):
		api.Fail(c, http.StatusNotFound, "video does not exist")
	case errors.Is(err, usecase.ErrNotOwner):
		api.Fail(c, http.StatusForbidden, "only the owner can modify this video")
	case errors.Is(err, usecase.ErrUploadFailed):
		api.Fail(c, http.StatusBadGateway, "media upload failed")
	default:
		slog.Error("video operation failed", "error", err)
		api.Fail(c, http.StatusInternalServerError, "something went wrong")
	}
}
