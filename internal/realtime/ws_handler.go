package realtime

import (
	"sync"
	"time"

	"clubportal/internal/shared/logger"
	"clubportal/internal/shared/profile"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WebSocketHandler serves GET /ws/session.
type WebSocketHandler struct {
	hub *Hub
	log logger.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *Hub, log logger.Logger) *WebSocketHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &WebSocketHandler{hub: hub, log: log.WithComponent("realtime-ws")}
}

// RegisterRoutes registers the websocket endpoint. The profile middleware must run first.
func (h *WebSocketHandler) RegisterRoutes(router fiber.Router) {
	ws := router.Group("/ws")
	ws.Use("/session", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if profile.ID(c) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing client profile"})
		}
		return c.Next()
	})
	ws.Get("/session", websocket.New(h.handleConnection))
}

func (h *WebSocketHandler) handleConnection(conn *websocket.Conn) {
	profileID, _ := conn.Locals(profile.LocalsKey).(string)
	sub := h.hub.Subscribe(profileID)
	defer h.hub.Unsubscribe(sub)

	log := h.log.WithFields(map[string]interface{}{"profile_id": profileID, "subscriber_id": sub.ID})
	log.Info("View connected")

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(conn, sub, done, log)
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("WebSocket read error: %v", err)
			}
			break
		}
	}
	close(done)
	wg.Wait()
	log.Info("View disconnected")
}

func (h *WebSocketHandler) writeLoop(conn *websocket.Conn, sub *Subscription, done <-chan struct{}, log logger.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Warnf("WebSocket write failed: %v", err)
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
