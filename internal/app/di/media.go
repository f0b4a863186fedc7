// Package di provides dependency injection factories for creating application components.
package di

import (
	"videotube_backend/internal/platform/config"
	"videotube_backend/internal/platform/media"
)

// NewMediaStore creates a fully configured S3-backed media store.
func NewMediaStore(cfg config.MediaConfig) (*media.S3Store, error) {
	return media.NewS3Store(cfg)
}
