// Package usecase はuserフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput は必須フィールドの欠落や不正な入力値に対して返されます。
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserNotFound はユーザーが見つからない場合に返されます。
	ErrUserNotFound = errors.New("user does not exist")

	// ErrInvalidCredentials はパスワード検証に失敗した場合に返されます。
	ErrInvalidCredentials = errors.New("invalid user credentials")

	// ErrUnauthorized はリフレッシュトークンの欠落・署名不正・期限切れに対して返されます。
	ErrUnauthorized = errors.New("unauthorized request")

	// ErrInvalidRefreshToken はトークンに紐づくユーザーが存在しない場合に返されます。
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrTokenReused はローテーション済み（または失効済み）のリフレッシュトークンが
	// 再提示された場合に返されます。リプレイやログアウト後の再利用の検出に使います。
	ErrTokenReused = errors.New("refresh token is expired or used")

	// ErrUploadFailed はメディアリレーへのアップロードが失敗した場合に返されます。
	ErrUploadFailed = errors.New("media upload failed")

	// ErrUsernameTaken / ErrEmailTaken はユニーク制約違反をアダプター層から伝えます。
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
)

// ConflictError は登録時の重複を、衝突したフィールド名と値つきで表します。
type ConflictError struct {
	Field string
	Value string
}

// Error はどのフィールドのどの値が衝突したかを示すメッセージを返します。
func (e *ConflictError) Error() string {
	return fmt.Sprintf("user with %s '%s' already exists", e.Field, e.Value)
}
