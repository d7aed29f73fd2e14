package websocket

import (
	"context"
	"log"
	"sync"
)

// Emitter sends events to sockets and rooms. Hub is the production
// implementation; tests record calls instead.
type Emitter interface {
	EmitTo(socketID, event string, data interface{})
	EmitRoom(room, event string, data interface{})
	Join(socketID, room string)
}

// Hub owns every connected client and the room membership. Only the Run
// goroutine mutates the maps; the mutex lets other goroutines read them.
type Hub struct {
	register   chan *WSClient
	unregister chan *WSClient
	// joins and frames share one channel so a join is applied before any
	// frame emitted after it.
	ops  chan hubOp
	done chan struct{}

	mu          sync.RWMutex
	clients     map[string]*WSClient
	rooms       map[string]map[string]*WSClient
	socketRooms map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		register:    make(chan *WSClient),
		unregister:  make(chan *WSClient),
		ops:         make(chan hubOp, 256),
		done:        make(chan struct{}),
		clients:     make(map[string]*WSClient),
		rooms:       make(map[string]map[string]*WSClient),
		socketRooms: make(map[string]map[string]struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			incConnections()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				h.dropLocked(client)
			}
			h.mu.Unlock()

		case op := <-h.ops:
			if op.join != nil {
				h.mu.Lock()
				h.joinLocked(*op.join)
				h.mu.Unlock()
				continue
			}
			h.deliver(op.frame)
		}
	}
}

func (h *Hub) joinLocked(m membership) {
	client, ok := h.clients[m.socketID]
	if !ok {
		return
	}
	room, ok := h.rooms[m.room]
	if !ok {
		room = make(map[string]*WSClient)
		h.rooms[m.room] = room
		setRooms(len(h.rooms))
	}
	room[client.ID] = client

	joined, ok := h.socketRooms[client.ID]
	if !ok {
		joined = make(map[string]struct{})
		h.socketRooms[client.ID] = joined
	}
	joined[m.room] = struct{}{}
}

// dropLocked removes client from every room and closes its send channel.
func (h *Hub) dropLocked(client *WSClient) {
	for room := range h.socketRooms[client.ID] {
		members := h.rooms[room]
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.socketRooms, client.ID)
	delete(h.clients, client.ID)
	close(client.Send)
	decConnections()
	setRooms(len(h.rooms))
}

func (h *Hub) deliver(msg outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []*WSClient
	switch msg.kind {
	case targetSocket:
		if client, ok := h.clients[msg.target]; ok {
			targets = append(targets, client)
		}
	case targetRoom:
		for _, client := range h.rooms[msg.target] {
			targets = append(targets, client)
		}
	}

	delivered := 0
	for _, client := range targets {
		select {
		case client.Send <- msg.frame:
			delivered++
		default:
			log.Printf("[WEBSOCKET] send buffer full for %s, dropping client", client.ID)
			h.dropLocked(client)
		}
	}
	if delivered > 0 {
		addDelivered(delivered)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		h.dropLocked(client)
	}
}

func (h *Hub) Register(client *WSClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Join(socketID, room string) {
	if socketID == "" || room == "" {
		return
	}
	h.send(hubOp{join: &membership{socketID: socketID, room: room}})
}

func (h *Hub) EmitTo(socketID, event string, data interface{}) {
	h.emit(targetSocket, socketID, event, data)
}

func (h *Hub) EmitRoom(room, event string, data interface{}) {
	h.emit(targetRoom, room, event, data)
}

func (h *Hub) emit(kind targetKind, target, event string, data interface{}) {
	if target == "" {
		return
	}
	frame, err := encodeEnvelope(event, data)
	if err != nil {
		log.Printf("[WEBSOCKET] encode %s: %v", event, err)
		return
	}
	h.send(hubOp{frame: outbound{kind: kind, target: target, frame: frame}})
}

// forwardRoom hands an already encoded frame to every member of room.
func (h *Hub) forwardRoom(room string, frame []byte) {
	h.send(hubOp{frame: outbound{kind: targetRoom, target: room, frame: frame}})
}

func (h *Hub) send(op hubOp) {
	select {
	case h.ops <- op:
	case <-h.done:
	}
}

// Connected reports whether socketID currently has an open connection.
func (h *Hub) Connected(socketID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[socketID]
	return ok
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
