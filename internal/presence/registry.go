// Package presence tracks which socket belongs to which user or agent.
package presence

import (
	"context"
	"sync"
	"time"
)

type AgentInfo struct {
	AgentID     string    `json:"agentId"`
	Name        string    `json:"name"`
	SocketID    string    `json:"socketId"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// Registry maps user ids to sockets and sockets to agents.
type Registry interface {
	SetUserSocket(ctx context.Context, userID, socketID string) error
	UserSocket(ctx context.Context, userID string) (string, bool, error)
	SetAgent(ctx context.Context, info AgentInfo) error
	Agent(ctx context.Context, socketID string) (AgentInfo, bool, error)
	AgentSocket(ctx context.Context, agentID string) (string, bool, error)
	// RemoveSocket forgets every mapping that points at socketID and returns
	// the agent that owned it, if any.
	RemoveSocket(ctx context.Context, socketID string) (AgentInfo, bool, error)
}

type MemoryRegistry struct {
	mu           sync.RWMutex
	users        map[string]string
	socketUsers  map[string]string
	agents       map[string]AgentInfo
	agentSockets map[string]string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		users:        make(map[string]string),
		socketUsers:  make(map[string]string),
		agents:       make(map[string]AgentInfo),
		agentSockets: make(map[string]string),
	}
}

func (m *MemoryRegistry) SetUserSocket(_ context.Context, userID, socketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.users[userID]; ok && prev != socketID {
		delete(m.socketUsers, prev)
	}
	m.users[userID] = socketID
	m.socketUsers[socketID] = userID
	return nil
}

func (m *MemoryRegistry) UserSocket(_ context.Context, userID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	socketID, ok := m.users[userID]
	return socketID, ok, nil
}

func (m *MemoryRegistry) SetAgent(_ context.Context, info AgentInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.agentSockets[info.AgentID]; ok && prev != info.SocketID {
		delete(m.agents, prev)
	}
	m.agents[info.SocketID] = info
	m.agentSockets[info.AgentID] = info.SocketID
	return nil
}

func (m *MemoryRegistry) Agent(_ context.Context, socketID string) (AgentInfo, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.agents[socketID]
	return info, ok, nil
}

func (m *MemoryRegistry) AgentSocket(_ context.Context, agentID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	socketID, ok := m.agentSockets[agentID]
	return socketID, ok, nil
}

func (m *MemoryRegistry) RemoveSocket(_ context.Context, socketID string) (AgentInfo, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if userID, ok := m.socketUsers[socketID]; ok {
		delete(m.socketUsers, socketID)
		if m.users[userID] == socketID {
			delete(m.users, userID)
		}
	}

	info, ok := m.agents[socketID]
	if !ok {
		return AgentInfo{}, false, nil
	}
	delete(m.agents, socketID)
	if m.agentSockets[info.AgentID] == socketID {
		delete(m.agentSockets, info.AgentID)
	}
	return info, true, nil
}
