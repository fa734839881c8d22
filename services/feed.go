package services

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

// UnreadFeed pushes live unread-message counts to open portal
// sessions over websockets. Delivery is best-effort: a slow or gone
// subscriber is dropped, never waited on.
type UnreadFeed struct {
	mu          sync.RWMutex
	subscribers map[string]map[*websocket.Conn]bool // profileID -> connections
}

// Feed is the global unread-count feed
var Feed = &UnreadFeed{subscribers: make(map[string]map[*websocket.Conn]bool)}

type unreadEvent struct {
	UnreadCount int64 `json:"unread_count"`
}

// Subscribe registers a connection for a profile's unread updates
func (f *UnreadFeed) Subscribe(profileID string, conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribers[profileID] == nil {
		f.subscribers[profileID] = make(map[*websocket.Conn]bool)
	}
	f.subscribers[profileID][conn] = true
}

// Unsubscribe removes a connection
func (f *UnreadFeed) Unsubscribe(profileID string, conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conns, ok := f.subscribers[profileID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(f.subscribers, profileID)
		}
	}
}

// PublishUnreadCount recomputes the profile's unread count and pushes
// it to every open connection. A nil feed or absent subscriber is a
// no-op.
func (f *UnreadFeed) PublishUnreadCount(db *gorm.DB, profileID string) {
	if f == nil {
		return
	}

	f.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(f.subscribers[profileID]))
	for conn := range f.subscribers[profileID] {
		conns = append(conns, conn)
	}
	f.mu.RUnlock()

	if len(conns) == 0 {
		return
	}

	count, err := UnreadCount(db, profileID)
	if err != nil {
		log.Printf("[WARNING] Failed to compute unread count for %s: %v", profileID, err)
		return
	}

	event := unreadEvent{UnreadCount: count}
	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("[WARNING] Dropping unread feed subscriber for %s: %v", profileID, err)
			f.Unsubscribe(profileID, conn)
			conn.Close()
		}
	}
}
