// Package dto はuserフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// LoginReq は/users/loginエンドポイントのリクエストボディを表します。
// usernameとemailはどちらか一方があれば十分なため、必須検証はユースケース側で行います。
type LoginReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}
