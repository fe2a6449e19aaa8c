package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub giữ các kết nối theo từng storybook (room) và các kết nối global cho trang danh sách
type Hub struct {
	rooms  map[string]map[*websocket.Conn]*Client
	global map[*websocket.Conn]*Client
	mu     sync.RWMutex
	log    *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*websocket.Conn]*Client),
		global: make(map[*websocket.Conn]*Client),
		log:    log,
	}
}

// Event là payload đẩy tới người đang theo dõi một storybook
type Event struct {
	Type        string      `json:"type"`
	StorybookID string      `json:"storybookId,omitempty"`
	Status      string      `json:"status,omitempty"`
	Data        interface{} `json:"data,omitempty"`
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{Conn: conn, Send: make(chan []byte, 256)}
}

// Register theo storybook ID, room rỗng nghĩa là global
func (h *Hub) Register(room string, conn *websocket.Conn) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	client := newClient(conn)
	if room == "" {
		h.global[conn] = client
	} else {
		if _, ok := h.rooms[room]; !ok {
			h.rooms[room] = make(map[*websocket.Conn]*Client)
		}
		h.rooms[room][conn] = client
	}

	go h.writePump(client)
	return client
}

func (h *Hub) Unregister(room string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room == "" {
		if client, ok := h.global[conn]; ok {
			close(client.Send)
			delete(h.global, conn)
		}
		return
	}
	if clients, ok := h.rooms[room]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast không chặn: client chậm bị bỏ qua message
func (h *Hub) Broadcast(room string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[room] {
		select {
		case client.Send <- data:
		default:
		}
	}
}

func (h *Hub) BroadcastGlobal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.global {
		select {
		case client.Send <- data:
		default:
		}
	}
}

func (h *Hub) PublishJSON(room string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Warn("ws marshal failed", zap.Error(err))
		return
	}
	if room == "" {
		h.BroadcastGlobal(data)
		return
	}
	h.Broadcast(room, data)
}

// SendProgress gửi tiến trình sinh truyện cho người đang xem storybook đó
func (h *Hub) SendProgress(bookID, status string, progress interface{}) {
	h.PublishJSON(bookID, Event{Type: "progress", StorybookID: bookID, Status: status, Data: progress})
}

func (h *Hub) BroadcastBookListChanged(bookID string) {
	h.PublishJSON("", Event{Type: "book_list_changed", StorybookID: bookID})
}

func (h *Hub) Stats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subscribers := 0
	for _, clients := range h.rooms {
		subscribers += len(clients)
	}
	return map[string]int{
		"rooms":       len(h.rooms),
		"subscribers": subscribers,
		"global":      len(h.global),
	}
}

// writePump là goroutine duy nhất ghi vào conn
func (h *Hub) writePump(client *Client) {
	defer func() {
		_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
