package main

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/gosuda/portal-mafia/mafia/game"
	"github.com/gosuda/portal-mafia/mafia/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 64
	maxFrameBytes  = 64 << 10
)

// Client is one websocket connection. It implements game.Conn; the game
// only ever calls Send and Close from the hub loop.
type Client struct {
	id      string
	conn    *websocket.Conn
	hub     *game.Hub
	limiter *rate.Limiter
	send    chan protocol.Event
	done    chan struct{}
	closed  atomic.Bool
}

func NewClient(id string, conn *websocket.Conn, hub *game.Hub, limiter *rate.Limiter) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		hub:     hub,
		limiter: limiter,
		send:    make(chan protocol.Event, sendBufferSize),
		done:    make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Send queues ev without blocking, dropping the oldest queued event when
// the buffer is full.
func (c *Client) Send(ev protocol.Event) {
	if c.closed.Load() {
		return
	}
	select {
	case c.send <- ev:
		return
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- ev:
	default:
		log.Debug().Str("conn", c.id).Str("type", string(ev.Type)).Msg("[mafia] dropped outbound event")
	}
}

// Close shuts the socket. The read loop then reports the disconnect.
func (c *Client) Close() {
	if c.closed.Swap(true) {
		return
	}
	close(c.done)
	_ = c.conn.Close()
}

func (c *Client) readLoop() {
	defer func() {
		c.Close()
		c.hub.Disconnect(c)
	}()
	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		typ, payload, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("read message")
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		if !c.limiter.Allow() {
			log.Debug().Str("conn", c.id).Msg("[mafia] rate limited frame dropped")
			continue
		}
		c.hub.Receive(c, payload)
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Debug().Err(err).Str("conn", c.id).Msg("write json")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
