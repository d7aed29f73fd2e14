package agent

import (
	"context"
	"fmt"

	"support-desk/internal/database"
	"support-desk/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	agents *mongo.Collection
}

func NewMongoRepository(db *database.Database) Repository {
	return &MongoRepository{agents: db.Mongo.Collection(model.AgentsTable)}
}

func (r *MongoRepository) CreateAgent(ctx context.Context, agent model.AgentItem) error {
	if agent.ActiveChats == nil {
		agent.ActiveChats = []string{}
	}
	if _, err := r.agents.InsertOne(ctx, agent); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetAgent(ctx context.Context, id string) (model.AgentItem, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetAgentByAgentID(ctx context.Context, agentID string) (model.AgentItem, error) {
	return r.findOne(ctx, bson.M{"agentId": agentID})
}

func (r *MongoRepository) GetAgentByUsername(ctx context.Context, username string) (model.AgentItem, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (model.AgentItem, error) {
	var agent model.AgentItem
	if err := r.agents.FindOne(ctx, filter).Decode(&agent); err != nil {
		if database.IsNoDocuments(err) {
			return model.AgentItem{}, ErrNotFound
		}
		return model.AgentItem{}, fmt.Errorf("find agent: %w", err)
	}
	return agent, nil
}

func (r *MongoRepository) ListAgents(ctx context.Context) ([]model.AgentItem, error) {
	cursor, err := r.agents.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find agents: %w", err)
	}
	defer cursor.Close(ctx)

	agents := make([]model.AgentItem, 0)
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, fmt.Errorf("decode agents: %w", err)
	}
	return agents, nil
}

func (r *MongoRepository) UpdateAgent(ctx context.Context, id string, update AgentUpdate) (model.AgentItem, error) {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.PasswordHash != nil {
		set["password"] = *update.PasswordHash
	}
	if update.LastActive != nil {
		set["lastActive"] = *update.LastActive
	}

	doc := bson.M{}
	switch {
	case update.ClearActiveChats && update.PushActiveChat != "":
		set["activeChats"] = []string{update.PushActiveChat}
	case update.ClearActiveChats:
		set["activeChats"] = []string{}
	case update.PushActiveChat != "":
		doc["$addToSet"] = bson.M{"activeChats": update.PushActiveChat}
	}
	if len(set) > 0 {
		doc["$set"] = set
	}
	if len(doc) == 0 {
		return r.GetAgent(ctx, id)
	}

	var agent model.AgentItem
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.agents.FindOneAndUpdate(ctx, bson.M{"_id": id}, doc, opts).Decode(&agent); err != nil {
		if database.IsNoDocuments(err) {
			return model.AgentItem{}, ErrNotFound
		}
		return model.AgentItem{}, fmt.Errorf("update agent: %w", err)
	}
	return agent, nil
}

func (r *MongoRepository) DeleteAgent(ctx context.Context, id string) error {
	res, err := r.agents.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
