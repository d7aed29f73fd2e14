package appointment

import (
	"context"
	"sync"
	"time"

	"support-desk/internal/model"
)

type MemoryRepository struct {
	mu           sync.Mutex
	appointments map[string]model.AppointmentItem
	slots        map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		appointments: make(map[string]model.AppointmentItem),
		slots:        make(map[string]string),
	}
}

func (m *MemoryRepository) CreateAppointment(ctx context.Context, appointment model.AppointmentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := model.AppointmentSlotKey(appointment.Date, appointment.Time)
	if _, taken := m.slots[slot]; taken {
		return ErrDuplicate
	}
	m.slots[slot] = appointment.ID
	m.appointments[appointment.ID] = appointment
	return nil
}

func (m *MemoryRepository) ListAppointments(ctx context.Context) ([]model.AppointmentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.AppointmentItem, 0, len(m.appointments))
	for _, appointment := range m.appointments {
		out = append(out, appointment)
	}
	return out, nil
}

func (m *MemoryRepository) UpdateAppointmentStatus(ctx context.Context, id string, status model.AppointmentStatus, updatedAt time.Time) (model.AppointmentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appointment, ok := m.appointments[id]
	if !ok {
		return model.AppointmentItem{}, ErrNotFound
	}
	appointment.Status = status
	appointment.UpdatedAt = updatedAt
	m.appointments[id] = appointment
	return appointment, nil
}
