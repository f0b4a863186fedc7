package dto

// ChangePasswordReq は/users/change-passwordエンドポイントのリクエストボディを表します。
type ChangePasswordReq struct {
	OldPassword        string `json:"oldPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
}
