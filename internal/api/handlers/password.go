package handlers

import (
	"net/http"

	"github.com/dom/roleplay-api/internal/api/respond"
	"github.com/dom/roleplay-api/internal/service"
	"go.uber.org/zap"
)

type PasswordHandler struct {
	passwordService *service.PasswordService
	log             *zap.Logger
}

func NewPasswordHandler(passwordService *service.PasswordService, logger *zap.Logger) *PasswordHandler {
	return &PasswordHandler{passwordService: passwordService, log: logger}
}

type ForgotPasswordRequest struct {
	Email            string `json:"email" validate:"required,email"`
	ResetPasswordURL string `json:"resetPasswordUrl"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=4"`
}

// Forgot handles POST /forgot-password.
func (h *PasswordHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decode(r, &req, http.StatusUnprocessableEntity); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	err := h.passwordService.Forgot(r.Context(), service.ForgotPasswordInput{
		Email:            req.Email,
		ResetPasswordURL: req.ResetPasswordURL,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.NoContent(w)
}

// Reset handles POST /reset-password.
func (h *PasswordHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decode(r, &req, http.StatusUnprocessableEntity); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	err := h.passwordService.Reset(r.Context(), service.ResetPasswordInput{
		Token:    req.Token,
		Password: req.Password,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.NoContent(w)
}
