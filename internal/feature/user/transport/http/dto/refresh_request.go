package dto

// RefreshReq represents the request body for token refresh.
// The refresh token may come from this body or from the refreshToken cookie.
type RefreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshRes represents the response for a successful token refresh.
type RefreshRes struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
