package handlers

import (
	"net/http"

	"github.com/dom/roleplay-api/internal/api/middleware"
	"github.com/dom/roleplay-api/internal/api/respond"
	"github.com/dom/roleplay-api/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	authService *service.AuthService
	log         *zap.Logger
}

func NewUserHandler(authService *service.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{authService: authService, log: logger}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
	Avatar   string `json:"avatar" validate:"omitempty,url"`
}

type UpdateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
	Avatar   string `json:"avatar" validate:"required,url"`
}

type UserEnvelope struct {
	User UserResponse `json:"user"`
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(r, &req, http.StatusUnprocessableEntity); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, UserEnvelope{User: toUserResponse(user)})
}

// Update handles PUT /users/{id}. The body is validated before the caller
// is checked against the path id.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, h.log, service.ErrInvalidToken)
		return
	}

	var req UpdateUserRequest
	if err := decode(r, &req, http.StatusUnprocessableEntity); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	userID, err := pathID(r, "id", service.ErrUserNotFound)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	user, err := h.authService.UpdateUser(r.Context(), actorID, userID, service.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, UserEnvelope{User: toUserResponse(user)})
}
