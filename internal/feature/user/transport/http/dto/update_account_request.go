package dto

// UpdateAccountReq は/users/update-accountエンドポイントのリクエストボディを表します。
// fullNameとemailの両方が必須です。
type UpdateAccountReq struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}
