// Package api はHTTP境界で使用する共通レスポンスエンベロープを定義します。
package api

import "github.com/gin-gonic/gin"

// Response は成功レスポンスの共通エンベロープです。
// すべての成功レスポンスは {status, data, message, success: true} の形式で返されます。
type Response struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Success bool        `json:"success"`
}

// Error は失敗レスポンスの共通エンベロープです。
// 内部エラーの詳細（スタックトレース、DBエラー文字列）はクライアントに公開しません。
type Error struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

// OK はエンベロープに包んだ成功レスポンスを書き込みます。
func OK(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{
		Status:  status,
		Data:    data,
		Message: message,
		Success: true,
	})
}

// Fail はエンベロープに包んだ失敗レスポンスを書き込みます。
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Error{
		Status:  status,
		Message: message,
		Success: false,
		Errors:  []string{},
	})
}

// Abort は失敗レスポンスを書き込み、以降のハンドラーを中断します。ミドルウェア用です。
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Error{
		Status:  status,
		Message: message,
		Success: false,
		Errors:  []string{},
	})
}
