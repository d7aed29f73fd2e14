package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	readLimit    = 512 * 1024
	sendBuffer   = 32
)

type WSClient struct {
	Conn     *websocket.Conn
	Send     chan []byte
	ID       string
	done     chan struct{} // closed when the reader exits
	mu       sync.Mutex    // guards writes to Conn
	isClosed bool
}

func newClient(conn *websocket.Conn, id string) *WSClient {
	return &WSClient{
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		ID:   id,
		done: make(chan struct{}),
	}
}

func (cl *WSClient) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			cl.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := cl.Conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("[WEBSOCKET] ping error for %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *WSClient) writeMessage() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.Conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case frame, ok := <-cl.Send:
			if !ok {
				cl.mu.Lock()
				cl.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				cl.mu.Unlock()
				return
			}

			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			cl.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := cl.Conn.WriteMessage(websocket.TextMessage, frame)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("[WEBSOCKET] write error for %s: %v", cl.ID, err)
				return
			}
		}
	}
}

// readMessage decodes every inbound frame and hands it to the router in
// arrival order. On exit the socket is unregistered and the router runs its
// disconnect flow.
func (cl *WSClient) readMessage(ctx context.Context, hub *Hub, router *Router) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WEBSOCKET] recovered from panic in reader %s: %v", cl.ID, r)
		}
		close(cl.done)
		hub.Unregister(cl)
		router.Disconnect(context.WithoutCancel(ctx), cl.ID)
		log.Printf("[WEBSOCKET] client %s disconnected", cl.ID)
	}()

	cl.Conn.SetReadLimit(readLimit)

	for {
		_, message, err := cl.Conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return
			}
			log.Printf("[WEBSOCKET] read error for %s: %v", cl.ID, err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil || env.Event == "" {
			hub.EmitTo(cl.ID, EventError, ErrorEvent{Message: "Invalid message format"})
			continue
		}
		router.Dispatch(ctx, cl.ID, env)
	}
}
