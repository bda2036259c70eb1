package dto

// GoogleTokenLoginRequest ส่ง idToken ตรงๆ หรือส่ง deep link ทั้งเส้นจาก desktop
// เช่น nextup://auth?idToken=...&accessToken=...
type GoogleTokenLoginRequest struct {
	IDToken  string `json:"idToken" validate:"required_without=DeepLink"`
	DeepLink string `json:"deepLink" validate:"required_without=IDToken"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Google OAuth DTOs
type GoogleOAuthURLResponse struct {
	URL string `json:"url"`
}
