package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/backstagepass/internal/middleware"
	"github.com/thereayou/backstagepass/internal/watch"
)

// WebSocketHandler поднимает соединение зрителя и связывает его с
// координатором комнат
type WebSocketHandler struct {
	hub         *watch.Hub
	coordinator *watch.Coordinator
	upgrader    websocket.Upgrader
}

func NewWebSocketHandler(hub *watch.Hub, coordinator *watch.Coordinator) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Проверить origin в prod
				return true
			},
		},
	}
}

// HandleWebSocket обрабатывает подключение к /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	token := c.GetString(middleware.TokenKey)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := watch.NewClient(h.hub, conn, userID.(uuid.UUID), token)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.coordinator)
}
