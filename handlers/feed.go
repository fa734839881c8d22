package handlers

import (
	"log"
	"net/http"

	"expert_panel_go/db"
	"expert_panel_go/middleware"
	"expert_panel_go/services"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origin checks are handled by the CORS layer; the socket
	// itself is gated by the session token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// UnreadFeedSocket upgrades the connection and streams unread-count
// updates for the authenticated profile until the client disconnects.
func UnreadFeedSocket(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	services.Feed.Subscribe(currentProfile.ID, conn)
	defer func() {
		services.Feed.Unsubscribe(currentProfile.ID, conn)
		conn.Close()
	}()

	// Push the current count immediately so the client does not wait
	// for the next message event.
	services.Feed.PublishUnreadCount(db.DB, currentProfile.ID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WARNING] Unread feed closed unexpectedly for %s: %v", currentProfile.ID, err)
			}
			return nil
		}
	}
}
