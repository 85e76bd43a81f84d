package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/user/tonpilot/backend/internal/auth"
	"github.com/user/tonpilot/backend/internal/dispatch"
)

const eventTimeout = 30 * time.Second

// ChatEndpoint returns the websocket handler for the chat surface.
// Authentication is a JWT in the connection URL's "token" query parameter,
// since websocket upgrades cannot carry an Authorization header from
// browsers.
func ChatEndpoint(hub *Hub, d *dispatch.Dispatcher, issuer *auth.TokenIssuer, log *zap.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		claims, err := issuer.Validate(c.Query("token"))
		if err != nil {
			log.Warn("chat connection rejected", zap.Error(err))
			_ = c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"))
			_ = c.Close()
			return
		}

		client := &Client{
			UserID: claims.UserID.String(),
			Conn:   c,
			Send:   make(chan []byte, 256),
		}
		hub.Register <- client

		go clientWritePump(client, log)
		// The read pump runs on the handler goroutine; returning from it
		// tears down the connection.
		clientReadPump(client, hub, d, log)
	}
}

// PricesEndpoint returns the handler for the public price feed. Clients
// only listen; anything they send is discarded.
func PricesEndpoint(hub *Hub, log *zap.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		client := &Client{
			UserID: "feed:" + c.RemoteAddr().String(),
			Conn:   c,
			Send:   make(chan []byte, 256),
		}
		hub.Register <- client

		go clientWritePump(client, log)

		defer func() {
			hub.Unregister <- client
			client.Conn.Close()
		}()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// clientWritePump pumps queued frames to the websocket connection.
func clientWritePump(client *Client, log *zap.Logger) {
	defer client.Conn.Close()

	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Warn("error writing to client",
				zap.String("user", client.UserID), zap.Error(err))
			return
		}
	}
	// Send channel closed by the hub; the deferred close drops the reader.
}

// clientReadPump decodes inbound frames, runs them through the dispatcher,
// and queues the resulting instruction for every connection of the user.
func clientReadPump(client *Client, hub *Hub, d *dispatch.Dispatcher, log *zap.Logger) {
	defer func() {
		hub.Unregister <- client
		client.Conn.Close()
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("client disconnected unexpectedly",
					zap.String("user", client.UserID), zap.Error(err))
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			// Malformed frames are answered, never fatal.
			hub.SendToUser(client.UserID, OutboundFrame{Type: "ack"})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		instr := d.Handle(ctx, toEvent(client.UserID, frame))
		cancel()

		hub.SendToUser(client.UserID, toFrame(instr))
	}
}

func toEvent(userID string, frame InboundFrame) dispatch.Event {
	ev := dispatch.Event{
		UserID:     userID,
		MessageRef: frame.MessageRef,
	}
	switch frame.Type {
	case "command":
		ev.Kind = dispatch.EventCommand
		ev.Name = frame.Name
		ev.Args = frame.Args
	case "navigation":
		ev.Kind = dispatch.EventNavigation
		ev.Token = frame.Token
	default:
		ev.Kind = dispatch.EventFreeText
		ev.Text = frame.Text
	}
	return ev
}

func toFrame(instr dispatch.Instruction) OutboundFrame {
	if instr.Kind == dispatch.InstructionAck {
		return OutboundFrame{Type: "ack", MessageRef: instr.MessageRef}
	}
	return OutboundFrame{
		Type:       "render",
		MessageRef: instr.MessageRef,
		Text:       instr.Text,
		Controls:   instr.Controls,
	}
}
