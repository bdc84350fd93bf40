package handlers

import (
	"net/http"

	"github.com/dom/roleplay-api/internal/api/respond"
	"github.com/dom/roleplay-api/internal/realtime"
	"github.com/dom/roleplay-api/internal/service"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub         *realtime.Hub
	authService *service.AuthService
	log         *zap.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, authService *service.AuthService, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		log:         logger,
	}
}

// Handle upgrades GET /ws?token= for the token's owner. Browsers cannot set
// headers on a websocket handshake, hence the query parameter.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respond.Error(w, h.log, service.ErrInvalidToken)
		return
	}

	session, err := h.authService.ValidateToken(r.Context(), token)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(h.hub, conn, session.UserID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
