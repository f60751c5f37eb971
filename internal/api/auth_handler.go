package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service/auth"
)

// Authenticator is the part of auth.Service the handlers use.
type Authenticator interface {
	Register(ctx context.Context, r auth.Registration) (*domain.User, *auth.TokenPair, error)
	Login(ctx context.Context, identifier, password string) (*domain.User, *auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a Authenticator) *AuthHandler {
	if a == nil {
		panic("authenticator cannot be nil")
	}
	return &AuthHandler{auth: a}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, tokens, err := h.auth.Register(r.Context(), auth.Registration{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, newAuthResponse(user, tokens))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, tokens, err := h.auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to log in")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, newAuthResponse(user, tokens))
}

// RefreshToken handles POST /auth/refresh. A refresh token buys a new pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, newAuthResponse(nil, tokens))
}
