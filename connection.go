package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn manages a single WebSocket player session
type Conn struct {
	ID    string
	IP    string
	ws    *websocket.Conn
	codec Codec

	mu     sync.Mutex // protects ws writes and closed
	closed bool
}

// NewConn creates a new connection wrapper
func NewConn(ws *websocket.Conn, ip string, codec Codec) *Conn {
	return &Conn{
		ID:    uuid.New().String(),
		IP:    ip,
		ws:    ws,
		codec: codec,
	}
}

// Send encodes msg with the connection's codec and writes it. Sends on a
// closed connection are silently dropped.
func (c *Conn) Send(msg any) error {
	frame, data, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return c.ws.WriteMessage(frame, data)
}

// SendError reports a problem to the client without closing the connection
func (c *Conn) SendError(msg string) {
	if err := c.Send(ErrorMsg{Type: MsgError, Message: msg}); err != nil {
		log.Printf("send error to %s: %v", c.ID, err)
	}
}

// Close marks connection closed
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.ws.Close()
}

// ConnManager manages all active connections
type ConnManager struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewConnManager creates an empty connection manager
func NewConnManager() *ConnManager {
	return &ConnManager{conns: make(map[string]*Conn)}
}

// Add registers a connection
func (m *ConnManager) Add(c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c.ID] = c
}

// Remove unregisters a connection
func (m *ConnManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, id)
}

// Count returns the number of active connections
func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Snapshot returns a copy of all current connections
func (m *ConnManager) Snapshot() []*Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Conn, 0, len(m.conns))
	for _, c := range m.conns {
		list = append(list, c)
	}
	return list
}

// ReadLoop handles incoming messages for a connection until it disconnects.
// Client frames are always JSON; see protocol.go for the message set.
func (c *Conn) ReadLoop(onMessage func(*Conn, ClientMessage), onDisconnect func(*Conn)) {
	defer func() {
		onDisconnect(c)
		c.Close()
	}()

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error for %s: %v", c.ID, err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("bad message from %s: %v", c.ID, err)
			continue
		}
		onMessage(c, msg)
	}
}
