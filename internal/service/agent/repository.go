package agent

import (
	"context"
	"errors"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"
)

var (
	ErrNotFound = errors.New("agent repository: not found")
	ErrConflict = errors.New("agent repository: username taken")
)

// AgentUpdate lists the fields to change. PushActiveChat appends one chat id;
// ClearActiveChats empties the list first.
type AgentUpdate struct {
	Name             *string
	Status           *model.AgentStatus
	PasswordHash     *string
	LastActive       *time.Time
	PushActiveChat   string
	ClearActiveChats bool
}

type Repository interface {
	CreateAgent(ctx context.Context, agent model.AgentItem) error
	GetAgent(ctx context.Context, id string) (model.AgentItem, error)
	GetAgentByAgentID(ctx context.Context, agentID string) (model.AgentItem, error)
	GetAgentByUsername(ctx context.Context, username string) (model.AgentItem, error)
	ListAgents(ctx context.Context) ([]model.AgentItem, error)
	UpdateAgent(ctx context.Context, id string, update AgentUpdate) (model.AgentItem, error)
	DeleteAgent(ctx context.Context, id string) error
}

func NewRepository(db *database.Database) Repository {
	if db.UsesMongo() {
		return NewMongoRepository(db)
	}
	return NewDynamoRepository(db)
}
