package models

// RefreshRequest is the payload for refreshing an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required" example:"rt_8a7b3c9d..."`
}

// LogoutRequest is the payload for logging out.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required" example:"rt_8a7b3c9d..."`
}

// AuthResponse is the response after successful login or registration.
type AuthResponse struct {
	AccessToken  string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIs..."`
	RefreshToken string `json:"refreshToken" example:"rt_8a7b3c9d..."`
	ExpiresIn    int    `json:"expiresIn" example:"900"`
	User         User   `json:"user"`
}

// RefreshResponse is the response after successful token refresh.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIs..."`
	RefreshToken string `json:"refreshToken" example:"rt_8a7b3c9d..."`
	ExpiresIn    int    `json:"expiresIn" example:"900"`
}

// Actor is the authenticated caller of a request, taken from the access token.
type Actor struct {
	UID   string
	Email string
	Role  Role
}
