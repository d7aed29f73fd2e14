package chat

import (
	"context"
	"errors"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"
)

var ErrNotFound = errors.New("chat repository: not found")

type RequestUpdate struct {
	Status   *model.RequestStatus
	AgentID  *string
	SocketID *string
}

type ChatUpdate struct {
	Status         *model.ChatStatus
	AgentID        *string
	SocketID       *string
	ResolutionNote *string
}

// ChatFilter narrows ListChats. Zero fields match everything.
type ChatFilter struct {
	Status  model.ChatStatus
	AgentID string
}

func (f ChatFilter) Matches(c model.ChatItem) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.AgentID != "" && c.AgentID != f.AgentID {
		return false
	}
	return true
}

type Repository interface {
	CreateRequest(ctx context.Context, request model.RequestItem) error
	GetRequest(ctx context.Context, id string) (model.RequestItem, error)
	UpdateRequest(ctx context.Context, id string, update RequestUpdate, updatedAt time.Time) (model.RequestItem, error)
	DeleteRequest(ctx context.Context, id string) error
	// ListRequests returns requests in any of statuses, or all when statuses is empty.
	ListRequests(ctx context.Context, statuses []model.RequestStatus) ([]model.RequestItem, error)

	CreateChat(ctx context.Context, chat model.ChatItem) error
	GetChat(ctx context.Context, chatID string) (model.ChatItem, error)
	UpdateChat(ctx context.Context, chatID string, update ChatUpdate, updatedAt time.Time) (model.ChatItem, error)
	AppendMessage(ctx context.Context, chatID string, message model.ChatMessage, updatedAt time.Time) (model.ChatItem, error)
	SetMessageStatus(ctx context.Context, chatID, messageID string, status model.MessageStatus) (model.ChatMessage, error)
	// SetMessageStatusIf moves a message from one status to another atomically.
	// When the message is no longer in from, it returns the stored message and false.
	SetMessageStatusIf(ctx context.Context, chatID, messageID string, from, to model.MessageStatus) (model.ChatMessage, bool, error)
	ListChats(ctx context.Context, filter ChatFilter) ([]model.ChatItem, error)

	CreateResolved(ctx context.Context, item model.ResolvedRequestItem) error
	ListResolved(ctx context.Context) ([]model.ResolvedRequestItem, error)
}

// NewRepository picks the implementation matching the configured store.
func NewRepository(db *database.Database) Repository {
	if db.UsesMongo() {
		return NewMongoRepository(db)
	}
	return NewDynamoRepository(db)
}
