package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"support-desk/internal/database"
	"support-desk/internal/model"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoRepository stores agents keyed by id. Lookups by agentId or username
// scan the table, which stays small.
type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateAgent(ctx context.Context, agent model.AgentItem) error {
	if _, err := r.GetAgentByUsername(ctx, agent.Username); err == nil {
		return ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if agent.ActiveChats == nil {
		agent.ActiveChats = []string{}
	}
	err := r.db.Client.PutItemIfNotExists(ctx, model.AgentsTable, "id", agent)
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrConflict
	}
	return err
}

func (r *DynamoRepository) GetAgent(ctx context.Context, id string) (model.AgentItem, error) {
	var agent model.AgentItem
	err := r.db.Client.GetItem(ctx, model.AgentsTable, database.Key("id", id), &agent)
	if err != nil {
		if isNotFound(err) {
			return model.AgentItem{}, ErrNotFound
		}
		return model.AgentItem{}, err
	}
	return agent, nil
}

func (r *DynamoRepository) GetAgentByAgentID(ctx context.Context, agentID string) (model.AgentItem, error) {
	return r.findBy(ctx, "agentId", agentID)
}

func (r *DynamoRepository) GetAgentByUsername(ctx context.Context, username string) (model.AgentItem, error) {
	return r.findBy(ctx, "username", username)
}

func (r *DynamoRepository) findBy(ctx context.Context, attr, value string) (model.AgentItem, error) {
	var agents []model.AgentItem
	err := r.db.Client.ScanInto(
		ctx,
		model.AgentsTable,
		"#attr = :value",
		map[string]types.AttributeValue{":value": database.AttrString(value)},
		map[string]string{"#attr": attr},
		&agents,
	)
	if err != nil {
		return model.AgentItem{}, err
	}
	if len(agents) == 0 {
		return model.AgentItem{}, ErrNotFound
	}
	return agents[0], nil
}

func (r *DynamoRepository) ListAgents(ctx context.Context) ([]model.AgentItem, error) {
	agents := make([]model.AgentItem, 0)
	if err := r.db.Client.ScanInto(ctx, model.AgentsTable, "", nil, nil, &agents); err != nil {
		return nil, err
	}
	sort.SliceStable(agents, func(i, j int) bool {
		return agents[i].CreatedAt.Before(agents[j].CreatedAt)
	})
	return agents, nil
}

func (r *DynamoRepository) UpdateAgent(ctx context.Context, id string, update AgentUpdate) (model.AgentItem, error) {
	var clauses []string
	values := map[string]types.AttributeValue{}
	names := map[string]string{}

	set := func(attr string, v interface{}) error {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", attr, err)
		}
		names["#"+attr] = attr
		values[":"+attr] = av
		clauses = append(clauses, fmt.Sprintf("#%s = :%s", attr, attr))
		return nil
	}

	var err error
	if update.Name != nil {
		err = errors.Join(err, set("name", *update.Name))
	}
	if update.Status != nil {
		err = errors.Join(err, set("status", *update.Status))
	}
	if update.PasswordHash != nil {
		err = errors.Join(err, set("password", *update.PasswordHash))
	}
	if update.LastActive != nil {
		err = errors.Join(err, set("lastActive", *update.LastActive))
	}
	switch {
	case update.ClearActiveChats && update.PushActiveChat != "":
		err = errors.Join(err, set("activeChats", []string{update.PushActiveChat}))
	case update.ClearActiveChats:
		err = errors.Join(err, set("activeChats", []string{}))
	case update.PushActiveChat != "":
		names["#activeChats"] = "activeChats"
		values[":chat"] = &types.AttributeValueMemberL{Value: []types.AttributeValue{database.AttrString(update.PushActiveChat)}}
		values[":empty"] = &types.AttributeValueMemberL{Value: []types.AttributeValue{}}
		clauses = append(clauses, "#activeChats = list_append(if_not_exists(#activeChats, :empty), :chat)")
	}
	if err != nil {
		return model.AgentItem{}, err
	}
	if len(clauses) == 0 {
		return r.GetAgent(ctx, id)
	}

	var agent model.AgentItem
	err = r.db.Client.UpdateItem(ctx, model.AgentsTable, database.Key("id", id), "SET "+strings.Join(clauses, ", "), values, names, &agent)
	if err != nil {
		if isNotFound(err) {
			return model.AgentItem{}, ErrNotFound
		}
		return model.AgentItem{}, err
	}
	return agent, nil
}

func (r *DynamoRepository) DeleteAgent(ctx context.Context, id string) error {
	err := r.db.Client.DeleteItemIfExists(ctx, model.AgentsTable, database.Key("id", id))
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, database.ErrItemNotFound)
}
