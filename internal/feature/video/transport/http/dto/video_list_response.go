// Package dto はvideoフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "videotube_backend/internal/feature/video/domain/entity"

// VideoListRes は動画一覧のページングつきレスポンスです。
type VideoListRes struct {
	Videos []entity.Video `json:"videos"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Total  int64          `json:"total"`
}
