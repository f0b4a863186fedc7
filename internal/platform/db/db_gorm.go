package db

import (
	"log"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	subscriptionentity "videotube_backend/internal/feature/subscription/domain/entity"
	userentity "videotube_backend/internal/feature/user/domain/entity"
	videoentity "videotube_backend/internal/feature/video/domain/entity"
	"videotube_backend/internal/platform/config"
)

// OpenDB opens the PostgreSQL connection, retrying until the database becomes
// reachable. Container orchestration often starts the app before the database
// accepts connections.
func OpenDB(cfg config.DBConfig) *gorm.DB {
	dsn := cfg.DSN()

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if cfg.RunMigrations {
		// マイグレーション（User, Video, Subscription, WatchEntry）
		if err := db.AutoMigrate(
			&userentity.User{},
			&userentity.WatchEntry{},
			&videoentity.Video{},
			&subscriptionentity.Subscription{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
