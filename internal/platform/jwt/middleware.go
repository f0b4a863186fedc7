package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"videotube_backend/internal/api"
	"videotube_backend/internal/feature/user/domain/entity"
)

const (
	// ContextUser is the gin context key for the authenticated user entity.
	ContextUser = "authUser"
	// ContextUserID is the gin context key for the authenticated user's ID.
	ContextUserID = "userID"

	// AccessTokenCookie is the cookie carrying the access token.
	AccessTokenCookie = "accessToken"
)

// AccessVerifier validates access tokens.
// Following Go convention: interfaces are defined by the consumer (middleware), not the provider.
type AccessVerifier interface {
	VerifyAccess(tokenStr string) (AccessClaims, error)
}

// UserLoader resolves the authenticated user from storage.
type UserLoader interface {
	// FindByID retrieves a user by ID.
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// AuthRequired returns a Gin middleware that validates the access token and
// restricts access to authenticated users only. The token is read from the
// accessToken cookie first, then from the Authorization: Bearer header.
// On success the resolved identity is attached to the request context; the
// middleware performs no token refresh.
func AuthRequired(verifier AccessVerifier, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			api.Abort(c, http.StatusUnauthorized, "unauthorized request")
			return
		}

		claims, err := verifier.VerifyAccess(tokenStr)
		if err != nil {
			slog.Warn("access token rejected", "remote_addr", c.ClientIP())
			api.Abort(c, http.StatusUnauthorized, "invalid access token")
			return
		}

		// トークンが有効でもユーザーが削除済みの場合は拒否する
		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			slog.Warn("token for unknown user", "user_id", claims.UserID, "remote_addr", c.ClientIP())
			api.Abort(c, http.StatusUnauthorized, "invalid access token")
			return
		}

		// 機密フィールドはコンテキストに載せない
		user.Password = ""
		user.RefreshToken = ""

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Next()
	}
}

// extractToken returns the access token from the cookie or, failing that,
// from the Authorization header. The cookie takes precedence.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// CurrentUser returns the authenticated user stored by AuthRequired.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok
}
