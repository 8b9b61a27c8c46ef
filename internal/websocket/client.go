package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	ws "github.com/coder/websocket"
)

const (
	// A household burst (settle, purchase, delivery) is a handful of
	// notices; screens that fall further behind resync on reconnect.
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one household screen (kiosk, phone or tablet) listening for
// ledger change notices.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	remote string
	send   chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, remote string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		remote: remote,
		send:   make(chan []byte, sendBufferSize),
	}
}

// syncMessage tells a freshly connected screen to reload the whole state,
// since notices sent while it was away are not replayed.
func syncMessage() []byte {
	data, _ := json.Marshal(NewMessage("state", "sync", "", ""))
	return data
}

// Run queues the sync notice, joins the hub and serves the screen until it
// disconnects or ctx ends.
func (c *Client) Run(ctx context.Context) {
	c.send <- syncMessage()
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	err := c.readPump(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && ws.CloseStatus(err) == -1 {
		c.hub.logger.Debug("screen disconnected", "remote", c.remote, "error", err)
	}
}

// Screens never talk back; frames are read only to notice the close.
func (c *Client) readPump(ctx context.Context) error {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return err
		}
	}
}

// writePump forwards change notices and pings so a kiosk whose wifi dropped
// is unregistered.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case notice, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, ws.MessageText, notice)
			cancel()
			if err != nil {
				c.hub.logger.Debug("notice write failed", "remote", c.remote, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
