package stats

import (
	"sync"

	"github.com/gorilla/websocket"
)

// StatsEvent is pushed to every dashboard watching an ad whenever a view or
// click lands.
type StatsEvent struct {
	AdID   int64 `json:"ad_id"`
	Views  int64 `json:"views"`
	Clicks int64 `json:"clicks"`
}

// Hub fans counter updates out to websocket subscribers, keyed by ad. Several
// dashboards may watch the same ad at once.
type Hub struct {
	subscribers map[int64]map[*websocket.Conn]struct{}
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Register(adID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.subscribers[adID] == nil {
		h.subscribers[adID] = make(map[*websocket.Conn]struct{})
	}
	h.subscribers[adID][conn] = struct{}{}
}

func (h *Hub) Unregister(adID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conns, exists := h.subscribers[adID]; exists {
		if _, ok := conns[conn]; ok {
			_ = conn.Close()
			delete(conns, conn)
		}
		if len(conns) == 0 {
			delete(h.subscribers, adID)
		}
	}
}

// PublishStats implements the attribution notifier. Dead connections are
// dropped on write failure.
func (h *Hub) PublishStats(adID, views, clicks int64) {
	h.mutex.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subscribers[adID]))
	for conn := range h.subscribers[adID] {
		conns = append(conns, conn)
	}
	h.mutex.RUnlock()

	event := StatsEvent{AdID: adID, Views: views, Clicks: clicks}
	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			h.Unregister(adID, conn)
		}
	}
}

func (h *Hub) SubscriberCount(adID int64) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.subscribers[adID])
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for adID, conns := range h.subscribers {
		for conn := range conns {
			_ = conn.Close()
		}
		delete(h.subscribers, adID)
	}
}
