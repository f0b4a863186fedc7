package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videotube_backend/internal/feature/user/domain/entity"
	"videotube_backend/internal/feature/user/usecase"
	jwtmw "videotube_backend/internal/platform/jwt"
)

// mockUserUsecase is a mock implementation of the UserUsecase interface.
type mockUserUsecase struct {
	RegisterFunc       func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	LoginFunc          func(ctx context.Context, identifier, password string) (*entity.User, jwtmw.TokenPair, error)
	LogoutFunc         func(ctx context.Context, userID uint) error
	RefreshFunc        func(ctx context.Context, incoming string) (jwtmw.TokenPair, error)
	ChangePasswordFunc func(ctx context.Context, userID uint, oldPassword, newPassword, confirmNewPassword string) error
	UpdateAccountFunc  func(ctx context.Context, userID uint, fullName, email string) (*entity.User, error)
	UpdateAvatarFunc   func(ctx context.Context, userID uint, fh *multipart.FileHeader) (*entity.User, error)
	UpdateCoverFunc    func(ctx context.Context, userID uint, fh *multipart.FileHeader) (*entity.User, error)
	ChannelProfileFunc func(ctx context.Context, username string, callerID uint) (*usecase.ChannelProfile, error)
	WatchHistoryFunc   func(ctx context.Context, userID uint) ([]usecase.WatchHistoryItem, error)
}

func (m *mockUserUsecase) Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserUsecase) Login(ctx context.Context, identifier, password string) (*entity.User, jwtmw.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, password)
	}
	return nil, jwtmw.TokenPair{}, errors.New("not implemented")
}

func (m *mockUserUsecase) Logout(ctx context.Context, userID uint) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID)
	}
	return nil
}

func (m *mockUserUsecase) Refresh(ctx context.Context, incoming string) (jwtmw.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, incoming)
	}
	return jwtmw.TokenPair{}, errors.New("not implemented")
}

func (m *mockUserUsecase) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword, confirmNewPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, oldPassword, newPassword, confirmNewPassword)
	}
	return nil
}

func (m *mockUserUsecase) UpdateAccount(ctx context.Context, userID uint, fullName, email string) (*entity.User, error) {
	if m.UpdateAccountFunc != nil {
		return m.UpdateAccountFunc(ctx, userID, fullName, email)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserUsecase) UpdateAvatar(ctx context.Context, userID uint, fh *multipart.FileHeader) (*entity.User, error) {
	if m.UpdateAvatarFunc != nil {
		return m.UpdateAvatarFunc(ctx, userID, fh)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserUsecase) UpdateCoverImage(ctx context.Context, userID uint, fh *multipart.FileHeader) (*entity.User, error) {
	if m.UpdateCoverFunc != nil {
		return m.UpdateCoverFunc(ctx, userID, fh)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserUsecase) ChannelProfile(ctx context.Context, username string, callerID uint) (*usecase.ChannelProfile, error) {
	if m.ChannelProfileFunc != nil {
		return m.ChannelProfileFunc(ctx, username, callerID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserUsecase) WatchHistory(ctx context.Context, userID uint) ([]usecase.WatchHistoryItem, error) {
	if m.WatchHistoryFunc != nil {
		return m.WatchHistoryFunc(ctx, userID)
	}
	return nil, nil
}

func testCookieOptions() CookieOptions {
	return CookieOptions{Domain: "", Secure: false, AccessMaxAge: 900, RefreshMaxAge: 2592000}
}

// authAs returns a middleware that injects an authenticated user into the context.
func authAs(user *entity.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(jwtmw.ContextUser, user)
		c.Set(jwtmw.ContextUserID, user.ID)
		c.Next()
	}
}

// multipartBody builds a multipart form with the given fields and file fields.
func multipartBody(t *testing.T, fields map[string]string, files []string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, name := range files {
		fw, err := w.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = io.WriteString(fw, "fake image bytes")
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUserHandler_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registerFields := map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"fullName": "Alice Example",
		"password": "password123",
	}

	t.Run("success: user registered with avatar", func(t *testing.T) {
		mockUC := &mockUserUsecase{
			RegisterFunc: func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
				assert.Equal(t, "alice", in.Username)
				assert.NotNil(t, in.Avatar, "avatar file should reach the usecase")
				return &entity.User{ID: 1, Username: "alice", Email: in.Email, FullName: in.FullName,
					AvatarURL: "https://media.example.com/avatars/a.png"}, nil
			},
		}
		handler := NewUserHandler(mockUC, testCookieOptions())

		router := gin.New()
		router.POST("/users/register", handler.Register)

		body, contentType := multipartBody(t, registerFields, []string{"avatar"})
		req, _ := http.NewRequest(http.MethodPost, "/users/register", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var res struct {
			Success bool           `json:"success"`
			Data    map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.Success)
		assert.Equal(t, "alice", res.Data["username"])
		// Sensitive fields never appear in the payload
		assert.NotContains(t, w.Body.String(), "password")
		assert.NotContains(t, w.Body.String(), "refreshToken")
	})

	t.Run("failure: missing avatar returns 400", func(t *testing.T) {
		mockUC := &mockUserUsecase{
			RegisterFunc: func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
				assert.Nil(t, in.Avatar)
				return nil, usecase.ErrInvalidInput
			},
		}
		handler := NewUserHandler(mockUC, testCookieOptions())

		router := gin.New()
		router.POST("/users/register", handler.Register)

		body, contentType := multipartBody(t, registerFields, nil)
		req, _ := http.NewRequest(http.MethodPost, "/users/register", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("failure: duplicate email returns 409 naming the field", func(t *testing.T) {
		mockUC := &mockUserUsecase{
			RegisterFunc: func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
				return nil, &usecase.ConflictError{Field: "email", Value: "alice@example.com"}
			},
		}
		handler := NewUserHandler(mockUC, testCookieOptions())

		router := gin.New()
		router.POST("/users/register", handler.Register)

		body, contentType := multipartBody(t, registerFields, []string{"avatar"})
		req, _ := http.NewRequest(http.MethodPost, "/users/register", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "email")
		assert.Contains(t, w.Body.String(), "alice@example.com")
	})
}

func TestUserHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    gin.H
		mockLoginFunc  func(ctx context.Context, identifier, password string) (*entity.User, jwtmw.TokenPair, error)
		expectedStatus int
		expectCookies  bool
	}{
		{
			name:        "success: login by username sets both cookies",
			requestBody: gin.H{"username": "alice", "password": "password123"},
			mockLoginFunc: func(ctx context.Context, identifier, password string) (*entity.User, jwtmw.TokenPair, error) {
				assert.Equal(t, "alice", identifier)
				return &entity.User{ID: 1, Username: "alice"},
					jwtmw.TokenPair{AccessToken: "acc-token", RefreshToken: "ref-token"}, nil
			},
			expectedStatus: http.StatusOK,
			expectCookies:  true,
		},
		{
			name:        "success: email used when username is absent",
			requestBody: gin.H{"email": "alice@example.com", "password": "password123"},
			mockLoginFunc: func(ctx context.Context, identifier, password string) (*entity.User, jwtmw.TokenPair, error) {
				assert.Equal(t, "alice@example.com", identifier)
				return &entity.User{ID: 1, Username: "alice"},
					jwtmw.TokenPair{AccessToken: "acc-token", RefreshToken: "ref-token"}, nil
			},
			expectedStatus: http.StatusOK,
			expectCookies:  true,
		},
		{
			name:        "failure: unknown user returns 404",
			requestBody: gin.H{"username": "ghost", "password": "password123"},
			mockLoginFunc: func(ctx context.Context, identifier, password string) (*entity.User, jwtmw.TokenPair, error) {
				return nil, jwtmw.TokenPair{}, usecase.ErrUserNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "failure: wrong password returns 401",
			requestBody: gin.H{"username": "alice", "password": "wrong"},
			mockLoginFunc: func(ctx context.Context, identifier, password string) (*entity.User, jwtmw.TokenPair, error) {
				return nil, jwtmw.TokenPair{}, usecase.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "failure: missing password fails validation",
			requestBody:    gin.H{"username": "alice"},
			mockLoginFunc:  nil, // Usecase is not called
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockUserUsecase{LoginFunc: tt.mockLoginFunc}
			handler := NewUserHandler(mockUC, testCookieOptions())

			router := gin.New()
			router.POST("/users/login", handler.Login)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/users/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectCookies {
				cookies := w.Result().Cookies()
				names := map[string]*http.Cookie{}
				for _, c := range cookies {
					names[c.Name] = c
				}
				require.Contains(t, names, jwtmw.AccessTokenCookie)
				require.Contains(t, names, RefreshTokenCookie)
				assert.True(t, names[jwtmw.AccessTokenCookie].HttpOnly, "access cookie must be httpOnly")
				assert.True(t, names[RefreshTokenCookie].HttpOnly, "refresh cookie must be httpOnly")
			}
		})
	}
}

func TestUserHandler_Refresh(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("token taken from cookie", func(t *testing.T) {
		mockUC := &mockUserUsecase{
			RefreshFunc: func(ctx context.Context, incoming string) (jwtmw.TokenPair, error) {
				assert.Equal(t, "cookie-token", incoming)
				return jwtmw.TokenPair{AccessToken: "new-acc", RefreshToken: "new-ref"}, nil
			},
		}
		handler := NewUserHandler(mockUC, testCookieOptions())

		router := gin.New()
		router.POST("/users/refresh-token", handler.Refresh)

		req, _ := http.NewRequest(http.MethodPost, "/users/refresh-token", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "cookie-token"})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "new-acc")
	})

	t.Run("token taken from body when cookie is absent", func(t *testing.T) {
		mockUC := &mockUserUsecase{
			RefreshFunc: func(ctx context.Context, incoming string) (jwtmw.TokenPair, error) {
				assert.Equal(t, "body-token", incoming)
				return jwtmw.TokenPair{AccessToken: "new-acc", RefreshToken: "new-ref"}, nil
			},
		}
		handler := NewUserHandler(mockUC, testCookieOptions())

		router := gin.New()
		router.POST("/users/refresh-token", handler.Refresh)

		body, _ := json.Marshal(gin.H{"refreshToken": "body-token"})
		req, _ := http.NewRequest(http.MethodPost, "/users/refresh-token", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("reused token returns 401 with the reuse message", func(t *testing.T) {
		mockUC := &mockUserUsecase{
			RefreshFunc: func(ctx context.Context, incoming string) (jwtmw.TokenPair, error) {
				return jwtmw.TokenPair{}, usecase.ErrTokenReused
			},
		}
		handler := NewUserHandler(mockUC, testCookieOptions())

		router := gin.New()
		router.POST("/users/refresh-token", handler.Refresh)

		req, _ := http.NewRequest(http.MethodPost, "/users/refresh-token", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "rotated-out"})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "refresh token is expired or used")
	})
}

func TestUserHandler_CurrentUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	user := &entity.User{ID: 1, Username: "alice", Email: "alice@example.com", FullName: "Alice Example"}
	handler := NewUserHandler(&mockUserUsecase{}, testCookieOptions())

	router := gin.New()
	router.GET("/users/current-user", authAs(user), handler.CurrentUser)

	req, _ := http.NewRequest(http.MethodGet, "/users/current-user", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "alice", res.Data["username"])
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "refreshToken")
}

func TestUserHandler_Logout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	user := &entity.User{ID: 1, Username: "alice"}
	logoutCalled := false
	mockUC := &mockUserUsecase{
		LogoutFunc: func(ctx context.Context, userID uint) error {
			assert.Equal(t, uint(1), userID)
			logoutCalled = true
			return nil
		},
	}
	handler := NewUserHandler(mockUC, testCookieOptions())

	router := gin.New()
	router.POST("/users/logout", authAs(user), handler.Logout)

	req, _ := http.NewRequest(http.MethodPost, "/users/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, logoutCalled)

	// Both token cookies are expired
	for _, c := range w.Result().Cookies() {
		assert.Empty(t, c.Value, "cookie %s should be cleared", c.Name)
		assert.Negative(t, c.MaxAge, "cookie %s should be expired", c.Name)
	}
}

func TestUserHandler_ChannelProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	caller := &entity.User{ID: 2, Username: "bob"}
	mockUC := &mockUserUsecase{
		ChannelProfileFunc: func(ctx context.Context, username string, callerID uint) (*usecase.ChannelProfile, error) {
			assert.Equal(t, "alice", username)
			assert.Equal(t, uint(2), callerID)
			return &usecase.ChannelProfile{
				FullName:         "Alice Example",
				Username:         "alice",
				SubscribersCount: 1,
				IsSubscribed:     true,
				Email:            "alice@example.com",
			}, nil
		},
	}
	handler := NewUserHandler(mockUC, testCookieOptions())

	router := gin.New()
	router.GET("/users/c/:username", authAs(caller), handler.ChannelProfile)

	req, _ := http.NewRequest(http.MethodGet, "/users/c/alice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, float64(1), res.Data["subscribersCount"])
	assert.Equal(t, true, res.Data["isSubscribed"])
}
