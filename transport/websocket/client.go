package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/boxpush/game/command"
	"github.com/wricardo/mcp-training/boxpush/game/engine"
	"github.com/wricardo/mcp-training/boxpush/game/service"
)

var errNoCommander = errors.New("commands are not accepted on this connection")

// deliver queues a message for this client only. Used before the client is
// visible to broadcasts, and for replies.
func (c *Client) deliver(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.sessions[c.sessionID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) replyError(err error) {
	c.deliver(&Message{
		SessionID: c.sessionID,
		Event:     EventError,
		Data:      map[string]string{"error": err.Error()},
	})
}

// handle runs one inbound message. Command results reach this client
// through the service publisher like every other subscriber.
func (c *Client) handle(raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		c.replyError(fmt.Errorf("invalid message: %w", err))
		return
	}
	if c.hub.commander == nil {
		c.replyError(errNoCommander)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch strings.ToLower(in.Type) {
	case "command", "":
		switch {
		case in.Direction != "":
			var d engine.Direction
			d, err = engine.ParseDirection(in.Direction)
			if err == nil {
				_, err = c.hub.commander.Execute(ctx, c.sessionID, command.Move(d), service.SourceWebSocket)
			}
		case in.Key != "":
			_, err = c.hub.commander.Key(ctx, c.sessionID, in.Key)
		case in.Text != "":
			_, err = c.hub.commander.Voice(ctx, c.sessionID, in.Text)
		default:
			err = errors.New("command needs text, key or direction")
		}
	case "state":
		var state *engine.Snapshot
		state, err = c.hub.commander.GetState(ctx, c.sessionID)
		if err == nil {
			c.deliver(&Message{SessionID: c.sessionID, Event: EventState, Data: state})
		}
	default:
		err = fmt.Errorf("unknown message type %q", in.Type)
	}

	if err != nil {
		c.hub.logger.Debug("inbound message rejected", "session", c.sessionID, "error", err)
		c.replyError(err)
	}
}

// readPump pumps messages from the WebSocket connection to the service
func (c *Client) readPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "session", c.sessionID, "error", err)
			}
			break
		}
		c.handle(message)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
