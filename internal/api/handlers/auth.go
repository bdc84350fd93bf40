package handlers

import (
	"net/http"
	"time"

	"github.com/dom/roleplay-api/internal/api/middleware"
	"github.com/dom/roleplay-api/internal/api/respond"
	"github.com/dom/roleplay-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: logger}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Type      string    `json:"type"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionResponse struct {
	User  UserResponse  `json:"user"`
	Token TokenResponse `json:"token"`
}

// Login handles POST /sessions.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req, http.StatusBadRequest); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, SessionResponse{
		User: toUserResponse(result.User),
		Token: TokenResponse{
			Type:      "bearer",
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt,
		},
	})
}

// Logout handles DELETE /sessions by revoking the token the request carried.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		respond.Error(w, h.log, service.ErrInvalidToken)
		return
	}

	if err := h.authService.Logout(r.Context(), session); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, struct{}{})
}
