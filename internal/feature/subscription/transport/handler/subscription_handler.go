// Package handler はsubscriptionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"videotube_backend/internal/api"
	"videotube_backend/internal/feature/subscription/usecase"
	jwtmw "videotube_backend/internal/platform/jwt"
)

// SubscriptionUsecase は購読操作のユースケースを定義します。
type SubscriptionUsecase interface {
	Toggle(ctx context.Context, callerID uint, username string) (bool, error)
}

// SubscriptionHandler は購読操作のHTTPリクエストを処理します。
type SubscriptionHandler struct {
	subs SubscriptionUsecase
}

// NewSubscriptionHandler はSubscriptionHandlerの新しいインスタンスを生成します。
func NewSubscriptionHandler(subs SubscriptionUsecase) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

// Toggle は購読トグルAPIエンドポイントを処理します。
// 反転後の購読状態を返却します。
func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "unauthorized request")
		return
	}

	subscribed, err := h.subs.Toggle(c.Request.Context(), user.ID, c.Param("username"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidInput):
			api.Fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, usecase.ErrChannelNotFound):
			api.Fail(c, http.StatusNotFound, "channel does not exist")
		default:
			slog.Error("subscription toggle failed", "error", err)
			api.Fail(c, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	api.OK(c, http.StatusOK, gin.H{"subscribed": subscribed}, "Subscription toggled")
}
