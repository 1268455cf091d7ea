package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aerolux/concierge-admin/internal/infrastructure/broadcast"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// EventHandler streams inventory mutations to dashboard clients over a
// websocket. Delivery is best-effort and there is no replay on reconnect.
type EventHandler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewEventHandler creates an EventHandler backed by hub. An empty origins
// list, or one containing "*", accepts any origin.
func NewEventHandler(hub *broadcast.Hub, origins []string, log zerolog.Logger) *EventHandler {
	return &EventHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		log: log,
	}
}

// Stream handles GET /inventory/events.
//
// @Summary      Live inventory events (websocket)
// @Tags         inventory
// @Security     BearerAuth
// @Param        token  query  string  false  "Access token when the Authorization header cannot be set"
// @Success      101
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /inventory/events [get]
func (h *EventHandler) Stream(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	scope := ""
	if who.IsVendor() {
		scope = who.ID
	}
	sub := h.hub.Subscribe(scope)
	defer h.hub.Unsubscribe(sub)

	h.log.Info().Str("subject", who.ID).Msg("event subscriber connected")
	defer h.log.Info().Str("subject", who.ID).Msg("event subscriber disconnected")

	done := make(chan struct{})
	go readPump(conn, done)
	writePump(conn, sub, done)
	return nil
}

// readPump discards client messages and keeps the read deadline fresh. It
// closes done when the client goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *broadcast.Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case event, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
