package watch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event — конверт исходящего сообщения.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Hub ведет учет живых соединений и именованных групп доставки.
// Семантику комнат он не знает: группа — это просто множество
// соединений, которым можно слать события.
type Hub struct {
	clients map[string]*Client

	// Группы доставки по имени (имя группы == код комнаты)
	groups map[string]map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Вызывается ровно один раз при окончательном уходе соединения
	onDisconnect func(connectionID string)

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		groups:     make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// OnDisconnect задает обработчик обрыва соединения. Устанавливается
// один раз при сборке сервера, до Run.
func (h *Hub) OnDisconnect(fn func(connectionID string)) {
	h.onDisconnect = fn
}

// Run запускает цикл hub
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop останавливает hub и закрывает все соединения
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.clients = make(map[string]*Client)
	h.groups = make(map[string]map[string]*Client)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"connection": client.ID,
		"user":       client.UserID,
	}).Info("client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, known := h.clients[client.ID]
	if known {
		for group := range h.groups {
			delete(h.groups[group], client.ID)
			if len(h.groups[group]) == 0 {
				delete(h.groups, group)
			}
		}
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.mu.Unlock()

	if !known {
		return
	}

	logrus.WithFields(logrus.Fields{
		"connection": client.ID,
		"user":       client.UserID,
	}).Info("client unregistered")

	// Уведомление об обрыве уходит вне мьютекса: обработчик ходит в
	// хранилище и шлет события через этот же hub.
	if h.onDisconnect != nil {
		go h.onDisconnect(client.ID)
	}
}

// AddToGroup добавляет соединение в группу. Повторное добавление —
// no-op.
func (h *Hub) AddToGroup(connectionID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connectionID]
	if !ok {
		return
	}

	if _, ok := h.groups[group]; !ok {
		h.groups[group] = make(map[string]*Client)
	}
	h.groups[group][connectionID] = client
}

// RemoveFromGroup убирает соединение из группы, само соединение
// остается живым.
func (h *Hub) RemoveFromGroup(connectionID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.groups[group]; ok {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// SendToConnection отправляет событие одному соединению
func (h *Hub) SendToConnection(connectionID, event string, data interface{}) {
	payload, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		logrus.WithError(err).Error("failed to marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.clients[connectionID]; ok {
		select {
		case client.Send <- payload:
		default:
			logrus.WithError(ErrClientQueueFull).WithField("connection", connectionID).Warn("event dropped")
		}
	}
}

// SendToGroupExcept отправляет событие всем в группе, кроме указанного
// соединения.
func (h *Hub) SendToGroupExcept(group, excludedConnectionID, event string, data interface{}) {
	payload, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		logrus.WithError(err).Error("failed to marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, client := range h.groups[group] {
		if id == excludedConnectionID {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			logrus.WithError(ErrClientQueueFull).WithField("connection", id).Warn("event dropped")
		}
	}
}

func (h *Hub) ping() {
	payload, err := json.Marshal(Event{Event: "ping"})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}
