package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shacharon/placesearch/internal/app/domain/wshub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled at the HTTP layer (spec §6 treats the WS framing
	// protocol itself as an external collaborator); the upgrade accepts
	// any origin and relies on the ticket for authorization.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type subscribeMessage struct {
	Type      string `json:"type"`
	Channel   string `json:"channel"`
	RequestID string `json:"requestId"`
}

// wsHandler implements the WebSocket protocol (spec §6): the client
// connects with a ticket query parameter, the server validates and
// upgrades, then waits for a `{type:"subscribe", channel, requestId}`
// message before attaching the connection to the hub. Only one
// subscription per socket is supported, matching the one-request-per-page
// client model the spec assumes.
func wsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("ticket")
		claims, err := deps.Tickets.Validate(c.Request.Context(), raw)
		if err != nil {
			c.Status(http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			deps.Logger.Warn("ws_upgrade_failed", zap.Error(err))
			return
		}
		defer conn.Close()

		var sub subscribeMessage
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		if sub.Type != "subscribe" || sub.Channel != "search" || sub.RequestID == "" {
			_ = conn.WriteJSON(wshub.SubNack{Type: "sub_nack", Channel: sub.Channel, RequestID: sub.RequestID, Reason: "invalid subscribe message"})
			return
		}

		subscriptionID := claims.SessionID + ":" + sub.RequestID
		events, pending := deps.Hub.Subscribe(sub.RequestID, claims.SessionID, subscriptionID)
		defer deps.Hub.Unsubscribe(sub.RequestID, subscriptionID)

		if err := conn.WriteJSON(wshub.SubAck{Type: "sub_ack", Channel: sub.Channel, RequestID: sub.RequestID, Pending: pending}); err != nil {
			return
		}

		pumpEvents(conn, events)
	}
}

// pumpEvents forwards hub events to the socket in publish order until the
// channel closes or the write side fails.
func pumpEvents(conn *websocket.Conn, events <-chan wshub.Event) {
	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
