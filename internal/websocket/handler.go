package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
)

// Handler принимает WebSocket соединения, токен передается в ?token=
type Handler struct {
	manager    *Manager
	jwtService *utils.JWTService
	upgrader   websocket.Upgrader
}

// NewHandler создает обработчик подключений
func NewHandler(manager *Manager, jwtService *utils.JWTService, allowedOrigins []string) *Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &Handler{
		manager:    manager,
		jwtService: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.jwtService.ExtractUserID(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.manager.log.WithError(err).Debug("Ошибка WebSocket handshake")
		return
	}

	NewClient(userID, conn, h.manager).Start()
}
