package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/backstagepass/internal/database"
)

// WatchRoomHandler — REST-справки о живых комнатах. Вся мутация
// состава идет только через координатор по websocket.
type WatchRoomHandler struct {
	db *database.Database
}

func NewWatchRoomHandler(db *database.Database) *WatchRoomHandler {
	return &WatchRoomHandler{db: db}
}

// PublicCodes возвращает коды всех публичных комнат
func (h *WatchRoomHandler) PublicCodes(c *gin.Context) {
	codes, err := h.db.PublicRoomCodes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

// Exists сообщает, существует ли комната с данным кодом
func (h *WatchRoomHandler) Exists(c *gin.Context) {
	exists, err := h.db.RoomExists(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// UserIDs возвращает идентификаторы пользователей в комнате
func (h *WatchRoomHandler) UserIDs(c *gin.Context) {
	ids, err := h.db.RoomUserIDs(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list room users"})
		return
	}
	if ids == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_ids": ids})
}
