package main

import (
	"log"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"videotube_backend/internal/app/di"
	"videotube_backend/internal/app/router"
	subscriptionadapters "videotube_backend/internal/feature/subscription/adapters"
	subscriptionhandler "videotube_backend/internal/feature/subscription/transport/handler"
	subscriptionusecase "videotube_backend/internal/feature/subscription/usecase"
	useradapters "videotube_backend/internal/feature/user/adapters"
	userhandler "videotube_backend/internal/feature/user/transport/handler"
	userusecase "videotube_backend/internal/feature/user/usecase"
	videoadapters "videotube_backend/internal/feature/video/adapters"
	videohandler "videotube_backend/internal/feature/video/transport/handler"
	videousecase "videotube_backend/internal/feature/video/usecase"
	"videotube_backend/internal/platform/config"
	infradb "videotube_backend/internal/platform/db"
	jwtmw "videotube_backend/internal/platform/jwt"
	infraredis "videotube_backend/internal/platform/redis"
	"videotube_backend/internal/shared/ratelimiter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// db
	db := infradb.OpenDB(cfg.DB)

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(cfg.Redis); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// メディアストレージ
	mediaStore, err := di.NewMediaStore(cfg.Media)
	if err != nil {
		log.Fatal("failed to initialize media store: ", err)
	}

	// Repository
	userRepo := useradapters.NewUserGorm(db)
	videoRepo := videoadapters.NewVideoGorm(db)
	subRepo := subscriptionadapters.NewSubscriptionGorm(db)

	// Redisキャッシュでラップ
	statsRepo := di.NewChannelStatsRepository(rdb, db, cfg.Redis.StatsTTL)

	// トークンサービス
	tokens := jwtmw.NewService(cfg.Auth.Access(), cfg.Auth.Refresh())

	// Usecase
	userUC := userusecase.NewUserUsecase(userRepo, statsRepo, mediaStore, tokens)
	videoUC := videousecase.NewVideoUsecase(videoRepo, mediaStore, userRepo)
	subUC := subscriptionusecase.NewSubscriptionUsecase(subRepo, userRepo, statsRepo)

	// Handler
	cookies := userhandler.CookieOptions{
		Domain:        cfg.Server.CookieDomain,
		Secure:        cfg.Server.CookieSecure,
		AccessMaxAge:  int(cfg.Auth.AccessTTL.Seconds()),
		RefreshMaxAge: int(cfg.Auth.RefreshTTL.Seconds()),
	}
	userH := userhandler.NewUserHandler(userUC, cookies)
	videoH := videohandler.NewVideoHandler(videoUC)
	subH := subscriptionhandler.NewSubscriptionHandler(subUC)

	// 資格情報エンドポイント用レートリミッタ
	loginLimiter := ratelimiter.NewRateLimiter(10, time.Minute)

	// ルータ生成
	r := router.NewRouter(userH, videoH, subH, jwtmw.AuthRequired(tokens, userRepo), loginLimiter)

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
