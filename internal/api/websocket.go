package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"paper-core/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// websocket streams quote ticks, trade events and notices to the client.
func (s *Server) websocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if s.Bus == nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"bus not ready"}`))
		return
	}

	quotes, unsubQuotes := s.Bus.Subscribe(events.EventQuoteTick, 100)
	defer unsubQuotes()
	opened, unsubOpened := s.Bus.Subscribe(events.EventTradeOpened, 100)
	defer unsubOpened()
	closed, unsubClosed := s.Bus.Subscribe(events.EventTradeClosed, 100)
	defer unsubClosed()
	notices, unsubNotices := s.Bus.Subscribe(events.EventNotice, 100)
	defer unsubNotices()

	write := func(event string, payload any) bool {
		if err := conn.WriteJSON(gin.H{"event": event, "data": payload}); err != nil {
			log.Printf("ws write error: %v", err)
			return false
		}
		return true
	}

	for {
		select {
		case msg, ok := <-quotes:
			if !ok || !write(string(events.EventQuoteTick), msg) {
				return
			}
		case msg, ok := <-opened:
			if !ok || !write(string(events.EventTradeOpened), msg) {
				return
			}
		case msg, ok := <-closed:
			if !ok || !write(string(events.EventTradeClosed), msg) {
				return
			}
		case msg, ok := <-notices:
			if !ok || !write(string(events.EventNotice), msg) {
				return
			}
		}
	}
}
