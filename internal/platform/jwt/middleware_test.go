package jwtmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"videotube_backend/internal/feature/user/domain/entity"
	"videotube_backend/internal/platform/config"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockUserLoader is a mock implementation of the UserLoader interface.
type mockUserLoader struct {
	FindByIDFunc func(ctx context.Context, id uint) (*entity.User, error)
}

func (m *mockUserLoader) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("user not found")
}

func middlewareTestService() *Service {
	return NewService(
		config.TokenConfig{Secret: "mw-access-secret", TTL: time.Hour},
		config.TokenConfig{Secret: "mw-refresh-secret", TTL: 24 * time.Hour},
	)
}

func loaderFor(user *entity.User) *mockUserLoader {
	return &mockUserLoader{
		FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
			if id == user.ID {
				u := *user
				return &u, nil
			}
			return nil, errors.New("user not found")
		},
	}
}

// TestAuthRequired_MissingToken はトークンがない場合やヘッダー形式が不正な場合に401が返されることを検証します。
func TestAuthRequired_MissingToken(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				c.Request.Header.Set("Authorization", tt.authHeader)
			}

			handler := AuthRequired(middlewareTestService(), &mockUserLoader{})
			handler(c)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
		})
	}
}

// TestAuthRequired_InvalidToken は不正なトークン（改ざん・期限切れ等）で401が返されることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	svc := middlewareTestService()
	user := &entity.User{ID: 7, Username: "bob", Email: "bob@example.com"}

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"garbage token", func(t *testing.T) string {
			return "not.a.jwt"
		}},
		{"wrong secret", func(t *testing.T) string {
			other := NewService(
				config.TokenConfig{Secret: "other", TTL: time.Hour},
				config.TokenConfig{Secret: "other-r", TTL: time.Hour},
			)
			pair, err := other.IssuePair(user)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			return pair.AccessToken
		}},
		{"expired token", func(t *testing.T) string {
			expired := NewService(
				config.TokenConfig{Secret: "mw-access-secret", TTL: -time.Minute},
				config.TokenConfig{Secret: "mw-refresh-secret", TTL: time.Hour},
			)
			pair, err := expired.IssuePair(user)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			return pair.AccessToken
		}},
		{"refresh token used as access token", func(t *testing.T) string {
			pair, err := svc.IssuePair(user)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			return pair.RefreshToken
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.Header.Set("Authorization", "Bearer "+tt.token(t))

			handler := AuthRequired(svc, loaderFor(user))
			handler(c)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
		})
	}
}

// TestAuthRequired_DeletedUser はトークンが有効でもユーザーが存在しない場合に401が返されることを検証します。
func TestAuthRequired_DeletedUser(t *testing.T) {
	svc := middlewareTestService()
	pair, err := svc.IssuePair(&entity.User{ID: 99, Username: "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	handler := AuthRequired(svc, &mockUserLoader{}) // loader knows no users
	handler(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthRequired_ValidBearerToken は有効なBearerトークンでユーザーがコンテキストに格納されることを検証します。
func TestAuthRequired_ValidBearerToken(t *testing.T) {
	svc := middlewareTestService()
	user := &entity.User{
		ID:           7,
		Username:     "bob",
		Email:        "bob@example.com",
		Password:     "hashed",
		RefreshToken: "stored-token",
	}
	pair, err := svc.IssuePair(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	handler := AuthRequired(svc, loaderFor(user))
	handler(c)

	if c.IsAborted() {
		t.Fatal("expected request not to be aborted")
	}

	got, ok := CurrentUser(c)
	if !ok {
		t.Fatal("expected user in context")
	}
	if got.ID != 7 || got.Username != "bob" {
		t.Errorf("unexpected user in context: %+v", got)
	}
	// Sensitive fields must be cleared before reaching handlers
	if got.Password != "" || got.RefreshToken != "" {
		t.Error("expected password and refresh token to be cleared")
	}
	if id, ok := c.Get(ContextUserID); !ok || id.(uint) != 7 {
		t.Errorf("expected userID 7 in context, got %v", id)
	}
}

// TestAuthRequired_CookiePrecedence はクッキーのトークンがAuthorizationヘッダーより優先されることを検証します。
func TestAuthRequired_CookiePrecedence(t *testing.T) {
	svc := middlewareTestService()
	user := &entity.User{ID: 7, Username: "bob", Email: "bob@example.com"}
	pair, err := svc.IssuePair(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	// Cookie carries the valid token, the header carries garbage
	c.Request.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: pair.AccessToken})
	c.Request.Header.Set("Authorization", "Bearer garbage")

	handler := AuthRequired(svc, loaderFor(user))
	handler(c)

	if c.IsAborted() {
		t.Fatal("expected cookie token to win over the header")
	}
	if _, ok := CurrentUser(c); !ok {
		t.Error("expected user in context")
	}
}
