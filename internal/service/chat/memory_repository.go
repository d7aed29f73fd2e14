package chat

import (
	"context"
	"sync"
	"time"

	"support-desk/internal/model"
)

// MemoryRepository keeps requests and chats in maps. FailCreateChat, when set,
// is returned by CreateChat.
type MemoryRepository struct {
	mu             sync.Mutex
	requests       map[string]model.RequestItem
	chats          map[string]model.ChatItem
	resolved       []model.ResolvedRequestItem
	FailCreateChat error
}

// NewMemoryRepository returns a process-local Repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		requests: make(map[string]model.RequestItem),
		chats:    make(map[string]model.ChatItem),
	}
}

func (m *MemoryRepository) CreateRequest(ctx context.Context, request model.RequestItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[request.ID] = request
	return nil
}

func (m *MemoryRepository) GetRequest(ctx context.Context, id string) (model.RequestItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok {
		return model.RequestItem{}, ErrNotFound
	}
	return request, nil
}

func (m *MemoryRepository) UpdateRequest(ctx context.Context, id string, update RequestUpdate, updatedAt time.Time) (model.RequestItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok {
		return model.RequestItem{}, ErrNotFound
	}
	if update.Status != nil {
		request.Status = *update.Status
	}
	if update.AgentID != nil {
		request.AgentID = *update.AgentID
	}
	if update.SocketID != nil {
		request.SocketID = *update.SocketID
	}
	request.UpdatedAt = updatedAt
	m.requests[id] = request
	return request, nil
}

func (m *MemoryRepository) DeleteRequest(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return ErrNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *MemoryRepository) ListRequests(ctx context.Context, statuses []model.RequestStatus) ([]model.RequestItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RequestItem, 0)
	for _, request := range m.requests {
		if len(statuses) == 0 {
			out = append(out, request)
			continue
		}
		for _, status := range statuses {
			if request.Status == status {
				out = append(out, request)
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryRepository) CreateChat(ctx context.Context, chat model.ChatItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreateChat != nil {
		return m.FailCreateChat
	}
	m.chats[chat.ChatID] = copyChat(chat)
	return nil
}

func (m *MemoryRepository) GetChat(ctx context.Context, chatID string) (model.ChatItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[chatID]
	if !ok {
		return model.ChatItem{}, ErrNotFound
	}
	return copyChat(chat), nil
}

func (m *MemoryRepository) UpdateChat(ctx context.Context, chatID string, update ChatUpdate, updatedAt time.Time) (model.ChatItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[chatID]
	if !ok {
		return model.ChatItem{}, ErrNotFound
	}
	if update.Status != nil {
		chat.Status = *update.Status
	}
	if update.AgentID != nil {
		chat.AgentID = *update.AgentID
	}
	if update.SocketID != nil {
		chat.SocketID = *update.SocketID
	}
	if update.ResolutionNote != nil {
		chat.ResolutionNote = *update.ResolutionNote
	}
	chat.UpdatedAt = updatedAt
	m.chats[chatID] = chat
	return copyChat(chat), nil
}

func (m *MemoryRepository) AppendMessage(ctx context.Context, chatID string, message model.ChatMessage, updatedAt time.Time) (model.ChatItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[chatID]
	if !ok {
		return model.ChatItem{}, ErrNotFound
	}
	chat.Messages = append(chat.Messages, message)
	chat.UpdatedAt = updatedAt
	m.chats[chatID] = chat
	return copyChat(chat), nil
}

func (m *MemoryRepository) SetMessageStatus(ctx context.Context, chatID, messageID string, status model.MessageStatus) (model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[chatID]
	if !ok {
		return model.ChatMessage{}, ErrNotFound
	}
	idx := chat.FindMessage(messageID)
	if idx < 0 {
		return model.ChatMessage{}, ErrNotFound
	}
	chat.Messages[idx].Status = status
	m.chats[chatID] = chat
	return chat.Messages[idx], nil
}

func (m *MemoryRepository) SetMessageStatusIf(ctx context.Context, chatID, messageID string, from, to model.MessageStatus) (model.ChatMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[chatID]
	if !ok {
		return model.ChatMessage{}, false, ErrNotFound
	}
	idx := chat.FindMessage(messageID)
	if idx < 0 {
		return model.ChatMessage{}, false, ErrNotFound
	}
	if chat.Messages[idx].Status != from {
		return chat.Messages[idx], false, nil
	}
	chat.Messages[idx].Status = to
	m.chats[chatID] = chat
	return chat.Messages[idx], true, nil
}

func (m *MemoryRepository) ListChats(ctx context.Context, filter ChatFilter) ([]model.ChatItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ChatItem, 0)
	for _, chat := range m.chats {
		if filter.Matches(chat) {
			out = append(out, copyChat(chat))
		}
	}
	return out, nil
}

func (m *MemoryRepository) CreateResolved(ctx context.Context, item model.ResolvedRequestItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolved = append(m.resolved, item)
	return nil
}

func (m *MemoryRepository) ListResolved(ctx context.Context) ([]model.ResolvedRequestItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ResolvedRequestItem(nil), m.resolved...), nil
}

func copyChat(chat model.ChatItem) model.ChatItem {
	chat.Messages = append([]model.ChatMessage(nil), chat.Messages...)
	return chat
}
