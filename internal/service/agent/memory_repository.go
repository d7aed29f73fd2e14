package agent

import (
	"context"
	"sort"
	"sync"

	"support-desk/internal/model"
)

// MemoryRepository keeps agents in a map keyed by id.
type MemoryRepository struct {
	mu     sync.Mutex
	agents map[string]model.AgentItem
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{agents: make(map[string]model.AgentItem)}
}

func (m *MemoryRepository) CreateAgent(ctx context.Context, agent model.AgentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.agents {
		if existing.Username == agent.Username {
			return ErrConflict
		}
	}
	agent.ActiveChats = append([]string{}, agent.ActiveChats...)
	m.agents[agent.ID] = agent
	return nil
}

func (m *MemoryRepository) GetAgent(ctx context.Context, id string) (model.AgentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[id]
	if !ok {
		return model.AgentItem{}, ErrNotFound
	}
	return copyAgent(agent), nil
}

func (m *MemoryRepository) GetAgentByAgentID(ctx context.Context, agentID string) (model.AgentItem, error) {
	return m.find(func(a model.AgentItem) bool { return a.AgentID == agentID })
}

func (m *MemoryRepository) GetAgentByUsername(ctx context.Context, username string) (model.AgentItem, error) {
	return m.find(func(a model.AgentItem) bool { return a.Username == username })
}

func (m *MemoryRepository) find(match func(model.AgentItem) bool) (model.AgentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, agent := range m.agents {
		if match(agent) {
			return copyAgent(agent), nil
		}
	}
	return model.AgentItem{}, ErrNotFound
}

func (m *MemoryRepository) ListAgents(ctx context.Context) ([]model.AgentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.AgentItem, 0, len(m.agents))
	for _, agent := range m.agents {
		out = append(out, copyAgent(agent))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) UpdateAgent(ctx context.Context, id string, update AgentUpdate) (model.AgentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[id]
	if !ok {
		return model.AgentItem{}, ErrNotFound
	}
	if update.Name != nil {
		agent.Name = *update.Name
	}
	if update.Status != nil {
		agent.Status = *update.Status
	}
	if update.PasswordHash != nil {
		agent.PasswordHash = *update.PasswordHash
	}
	if update.LastActive != nil {
		agent.LastActive = *update.LastActive
	}
	if update.ClearActiveChats {
		agent.ActiveChats = []string{}
	}
	if update.PushActiveChat != "" && !contains(agent.ActiveChats, update.PushActiveChat) {
		agent.ActiveChats = append(agent.ActiveChats, update.PushActiveChat)
	}
	m.agents[id] = agent
	return copyAgent(agent), nil
}

func (m *MemoryRepository) DeleteAgent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[id]; !ok {
		return ErrNotFound
	}
	delete(m.agents, id)
	return nil
}

func copyAgent(agent model.AgentItem) model.AgentItem {
	agent.ActiveChats = append([]string{}, agent.ActiveChats...)
	return agent
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
