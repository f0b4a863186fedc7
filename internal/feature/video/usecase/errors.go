// Package usecase はvideoフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrInvalidInput は必須フィールドの欠落や不正な入力値に対して返されます。
	ErrInvalidInput = errors.New("invalid input")

	// ErrVideoNotFound は動画が存在しない、または呼び出し元から不可視の場合に返されます。
	// 非公開動画の存在は所有者以外には秘匿します。
	ErrVideoNotFound = errors.New("video does not exist")

	// ErrNotOwner は所有者以外による変更操作に対して返されます。
	ErrNotOwner = errors.New("only the owner can modify this video")

	// ErrUploadFailed はメディアリレーへのアップロードが失敗した場合に返されます。
	ErrUploadFailed = errors.New("media upload failed")
)
