package api

import (
	"net/http"

	"github.com/dom/roleplay-api/internal/api/handlers"
	"github.com/dom/roleplay-api/internal/api/middleware"
	"github.com/dom/roleplay-api/internal/config"
	"github.com/dom/roleplay-api/internal/realtime"
	"github.com/dom/roleplay-api/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *realtime.Hub, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth, logger)
	userHandler := handlers.NewUserHandler(services.Auth, logger)
	passwordHandler := handlers.NewPasswordHandler(services.Password, logger)
	groupHandler := handlers.NewGroupHandler(services.Group, logger)
	requestHandler := handlers.NewGroupRequestHandler(services.GroupRequest, logger)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, logger)

	requireAuth := middleware.Auth(services.Auth, logger)
	limitByIP := middleware.RateLimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow, logger)

	// Credential endpoints
	r.Group(func(r chi.Router) {
		r.Use(limitByIP)
		r.Post("/sessions", authHandler.Login)
		r.Post("/forgot-password", passwordHandler.Forgot)
		r.Post("/reset-password", passwordHandler.Reset)
	})

	r.Post("/users", userHandler.Register)
	r.With(requireAuth).Put("/users/{id}", userHandler.Update)
	r.With(requireAuth).Delete("/sessions", authHandler.Logout)

	r.Get("/ws", wsHandler.Handle)

	// Groups: reads are public, writes need a session
	r.Get("/groups", groupHandler.List)
	r.Get("/groups/{groupId}", groupHandler.Get)
	r.Get("/groups/{groupId}/requests", requestHandler.List)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/groups", groupHandler.Create)
		r.Delete("/groups/{groupId}", groupHandler.Delete)
		r.Delete("/groups/{groupId}/players/{playerId}", groupHandler.RemovePlayer)

		r.Post("/groups/{groupId}/requests", requestHandler.Create)
		r.Post("/groups/{groupId}/requests/{requestId}", requestHandler.Accept)
		r.Patch("/groups/{groupId}/requests/{requestId}", requestHandler.Accept)
		r.Post("/groups/{groupId}/requests/{requestId}/accept", requestHandler.Accept)
		r.Patch("/groups/{groupId}/requests/{requestId}/accept", requestHandler.Accept)
	})

	return r
}
