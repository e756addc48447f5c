package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mcoot/jeopardyze-client/internal/devserver/apierr"
	"github.com/mcoot/jeopardyze-client/internal/devserver/request"
	"github.com/mcoot/jeopardyze-client/internal/devserver/response"
	"github.com/mcoot/jeopardyze-client/internal/model"
	"github.com/mcoot/jeopardyze-client/internal/services/auth"
)

// AuthHandler handles the identity endpoints
type AuthHandler struct {
	authService *auth.Service
	tokens      *auth.Tokens
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
	}
}

// Guest handles POST /api/auth/guest
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	player, err := h.authService.CreateGuest(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	h.writeToken(w, http.StatusOK, player)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.UsernameOrEmail == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username_or_email and password are required"))
		return
	}

	player, err := h.authService.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	h.writeToken(w, http.StatusOK, player)
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	switch {
	case req.Username == "":
		apierr.WriteError(w, apierr.NewInvalidRequestError("username is required"))
		return
	case !strings.Contains(req.Email, "@"):
		apierr.WriteError(w, apierr.NewInvalidRequestError("a valid email is required"))
		return
	case req.Password == "":
		apierr.WriteError(w, apierr.NewInvalidRequestError("password is required"))
		return
	}

	reg, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		GuestID:  req.GuestID,
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Registration{
		Message: "Verification code sent to email",
		Email:   reg.Email,
	})
}

// VerifyEmail handles POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Email == "" || req.Code == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("email and code are required"))
		return
	}

	player, err := h.authService.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	h.writeToken(w, http.StatusOK, player)
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, status int, player *model.Player) {
	cred, err := h.tokens.Issue(*player)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, status, response.TokenFor(cred, player))
}
