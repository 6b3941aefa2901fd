package watch

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения
	maxMessageSize = 64 * 1024 // 64KB
)

// SessionHandler обрабатывает жизненный цикл участника комнаты.
// Реализуется координатором.
type SessionHandler interface {
	Join(connectionID, roomCode, password, credential string) error
	Leave(connectionID, roomCode string)
	Command(connectionID, roomCode string, cmd Command)
}

// Client — одно websocket-соединение зрителя.
type Client struct {
	ID         string // connectionId, уникален на все время жизни соединения
	UserID     uuid.UUID
	credential string // сырой токен, предъявляется координатору при join

	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

// inboundFrame — входящий кадр протокола комнаты.
type inboundFrame struct {
	Action   string          `json:"action"` // join | leave | command
	Room     string          `json:"room"`
	Password string          `json:"password,omitempty"`
	Command  string          `json:"command,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, credential string) *Client {
	return &Client{
		ID:         uuid.New().String(),
		UserID:     userID,
		credential: credential,
		Conn:       conn,
		Send:       make(chan []byte, 256),
		Hub:        hub,
	}
}

// ReadPump читает кадры от клиента и передает их координатору
func (c *Client) ReadPump(handler SessionHandler) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame inboundFrame
		if err := c.Conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Warn("websocket read error")
			}
			break
		}

		if frame.Room == "" {
			continue
		}

		switch frame.Action {
		case "join":
			if err := handler.Join(c.ID, frame.Room, frame.Password, c.credential); err != nil {
				if errors.Is(err, ErrUnauthorized) {
					// Аналог Context.Abort: событие unauthorized уже
					// поставлено в очередь, соединение обрывается.
					return
				}
				logrus.WithError(err).Error("join failed")
			}

		case "leave":
			handler.Leave(c.ID, frame.Room)

		case "command":
			cmd, err := ParseCommand(frame.Command, frame.Data)
			if err != nil {
				// Кривые команды молча отбрасываются
				continue
			}
			handler.Command(c.ID, frame.Room, cmd)
		}
	}
}

// WritePump отправляет события клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.Conn.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
