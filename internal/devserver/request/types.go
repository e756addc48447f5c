package request

import "github.com/mcoot/jeopardyze-client/internal/model"

// LoginRequest is the request body for logging in
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// RegisterRequest is the request body for registering a user
type RegisterRequest struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	GuestID  *model.PlayerID `json:"guest_id"`
}

// VerifyEmailRequest is the request body for confirming a verification code
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
