package ticket

import (
	"context"
	"sync"
	"time"

	"support-desk/internal/model"
)

type MemoryRepository struct {
	mu      sync.Mutex
	tickets map[string]model.TicketItem
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tickets: make(map[string]model.TicketItem)}
}

func (m *MemoryRepository) CreateTicket(ctx context.Context, ticket model.TicketItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticket.ID] = ticket
	return nil
}

func (m *MemoryRepository) GetTicket(ctx context.Context, id string) (model.TicketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return model.TicketItem{}, ErrNotFound
	}
	return ticket, nil
}

func (m *MemoryRepository) ListTickets(ctx context.Context) ([]model.TicketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.TicketItem, 0, len(m.tickets))
	for _, ticket := range m.tickets {
		out = append(out, ticket)
	}
	return out, nil
}

func (m *MemoryRepository) UpdateTicketStatus(ctx context.Context, id string, status model.TicketStatus, updatedAt time.Time) (model.TicketItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return model.TicketItem{}, ErrNotFound
	}
	ticket.Status = status
	ticket.UpdatedAt = updatedAt
	m.tickets[id] = ticket
	return ticket, nil
}
