package client

import (
	"context"
	"errors"

	"github.com/mcoot/jeopardyze-client/internal/model"
)

// Auth endpoint paths, relative to the API root
const (
	PathGuest       = "/auth/guest"
	PathLogin       = "/auth/login"
	PathRegister    = "/auth/register"
	PathVerifyEmail = "/auth/verify-email"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	GuestID  *model.PlayerID `json:"guest_id,omitempty"`
}

// RegisterResponse is returned by POST /auth/register
type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// VerifyEmailRequest is the body of POST /auth/verify-email
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// AuthAPI calls the identity endpoints. Its client must not carry the
// intercepting transport: these calls establish credentials, they never
// present one.
type AuthAPI struct {
	client *Client
}

// NewAuthAPI creates an AuthAPI on top of an unauthenticated client
func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// Guest mints a new anonymous identity
func (a *AuthAPI) Guest(ctx context.Context) (*model.AuthResult, error) {
	var result model.AuthResult
	if err := a.client.Post(ctx, PathGuest, nil, &result); err != nil {
		return nil, err
	}
	if err := validateAuthResult(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates a registered user
func (a *AuthAPI) Login(ctx context.Context, req LoginRequest) (*model.AuthResult, error) {
	var result model.AuthResult
	if err := a.client.Post(ctx, PathLogin, req, &result); err != nil {
		return nil, err
	}
	if err := validateAuthResult(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an unverified account and sends a verification code.
// Registering again with the same details re-sends the code.
func (a *AuthAPI) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var result RegisterResponse
	if err := a.client.Post(ctx, PathRegister, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyEmail confirms a verification code and signs the user in
func (a *AuthAPI) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*model.AuthResult, error) {
	var result model.AuthResult
	if err := a.client.Post(ctx, PathVerifyEmail, req, &result); err != nil {
		return nil, err
	}
	if err := validateAuthResult(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

var errMissingAccessToken = errors.New("response carries no access_token")

func validateAuthResult(r *model.AuthResult) error {
	if r.AccessToken == "" {
		return errMissingAccessToken
	}
	return nil
}
