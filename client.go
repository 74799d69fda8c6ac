/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1 << 20
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. A connection starts unjoined, joins a
// single room, and stays there until it disconnects.
type Client struct {
	id   string
	conn *websocket.Conn

	send chan any
	done chan struct{}
	once sync.Once

	limiter *rate.Limiter

	// owned by the read pump
	hub *Hub
	// owned by the hub's run loop
	userName string
}

func newClient(cfg *Config, conn *websocket.Conn) *Client {
	limit := rate.Inf
	if cfg.eventRate > 0 {
		limit = rate.Limit(cfg.eventRate)
	}

	return &Client{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan any, sendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(limit, cfg.eventBurst),
	}
}

// enqueue queues msg for the write pump without blocking. A full queue means
// the peer is not reading, and the connection is closed.
func (c *Client) enqueue(msg any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.close()
		return false
	}
}

func (c *Client) reject(event string, err error) {
	c.enqueue(RejectedMessage{
		Type:   eventRejected,
		Event:  event,
		Reason: err.Error(),
	})
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// dispatch routes a validated message. Only join may bind a connection to a
// room; everything after that must target the same room.
func (c *Client) dispatch(reg *Registry, msg ClientMessage) {
	switch {
	case c.hub == nil && msg.Type != eventJoin:
		c.reject(msg.Type, errNotJoined)
		return
	case c.hub != nil && c.hub.key != msg.RoomKey && msg.Type == eventJoin:
		c.reject(msg.Type, errAlreadyJoined)
		return
	case c.hub != nil && c.hub.key != msg.RoomKey:
		c.reject(msg.Type, errWrongRoom)
		return
	}

	if c.hub == nil {
		c.hub = reg.GetOrCreate(msg.RoomKey)
	}

	if !c.hub.submit(c, msg) {
		c.close()
	}
}

func (c *Client) readPump(cfg *Config, reg *Registry) {
	defer func() {
		if c.hub != nil {
			c.hub.leave(c)
		}
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reject("", errMalformed)
			continue
		}

		if !c.limiter.Allow() {
			logf(cfg, "EVENT: Rate limited %s event from %s", msg.Type, c.id)
			c.reject(msg.Type, errRateLimited)
			continue
		}

		if err := msg.validate(cfg.chatMaxLength); err != nil {
			logf(cfg, "EVENT: Rejected %s event from %s: %v", msg.Type, c.id, err)
			c.reject(msg.Type, err)
			continue
		}

		c.dispatch(reg, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func serveWS(cfg *Config, reg *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade from %s failed: %v", realIP(r), err)
			return
		}

		c := newClient(cfg, conn)

		logf(cfg, "SERVE: Websocket %s opened by %s", c.id, realIP(r))

		go c.writePump()
		c.readPump(cfg, reg)

		logf(cfg, "SERVE: Websocket %s closed", c.id)
	}
}

