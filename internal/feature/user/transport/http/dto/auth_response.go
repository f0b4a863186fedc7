package dto

import "videotube_backend/internal/feature/user/domain/entity"

// LoginRes represents the response for a successful login.
// Tokens are returned in the body in addition to the cookies so that
// non-browser clients can use the Authorization header.
type LoginRes struct {
	User         *entity.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}
