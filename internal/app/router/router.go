package router

import (
	subscriptionhandler "videotube_backend/internal/feature/subscription/transport/handler"
	userhandler "videotube_backend/internal/feature/user/transport/handler"
	videohandler "videotube_backend/internal/feature/video/transport/handler"
	platformhandler "videotube_backend/internal/platform/http/handler"
	"videotube_backend/internal/shared/ratelimiter"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(users *userhandler.UserHandler, videos *videohandler.VideoHandler,
	subs *subscriptionhandler.SubscriptionHandler,
	authRequired gin.HandlerFunc, loginLimiter *ratelimiter.RateLimiter) *gin.Engine {
	r := gin.Default()

	// ブラウザクライアント向け。クッキー認証のためcredentialsを許可
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = false
	corsCfg.AllowOriginFunc = func(origin string) bool { return true }
	corsCfg.AllowCredentials = true
	corsCfg.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsCfg))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", platformhandler.Health)

	u := r.Group("/users")
	{
		// 資格情報を受けるエンドポイントのみレート制限
		u.POST("/register", loginLimiter.Middleware(), users.Register)
		u.POST("/login", loginLimiter.Middleware(), users.Login)
		// ローテーションはクッキーまたはボディのリフレッシュトークンで認証する
		u.POST("/refresh-token", users.Refresh)

		// 認証必須のルート
		auth := u.Group("/")
		auth.Use(authRequired)
		{
			auth.POST("/logout", users.Logout)
			auth.POST("/change-password", users.ChangePassword)
			auth.GET("/current-user", users.CurrentUser)
			auth.PATCH("/update-account", users.UpdateAccount)
			auth.PATCH("/change-avatar", users.UpdateAvatar)
			auth.PATCH("/change-coverImage", users.UpdateCoverImage)
			auth.GET("/c/:username", users.ChannelProfile)
			auth.GET("/watch-history", users.WatchHistory)
		}
	}

	v := r.Group("/videos")
	v.Use(authRequired)
	{
		v.POST("", videos.Publish)
		v.GET("", videos.List)
		v.GET("/:id", videos.Get)
		v.PATCH("/:id", videos.Update)
		v.DELETE("/:id", videos.Delete)
		v.PATCH("/:id/toggle-publish", videos.TogglePublish)
	}

	s := r.Group("/subscriptions")
	s.Use(authRequired)
	{
		s.POST("/c/:username", subs.Toggle)
	}

	return r
}
