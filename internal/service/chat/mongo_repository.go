package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	requests *mongo.Collection
	chats    *mongo.Collection
	resolved *mongo.Collection
}

func NewMongoRepository(db *database.Database) Repository {
	return &MongoRepository{
		requests: db.Mongo.Collection(model.RequestsTable),
		chats:    db.Mongo.Collection(model.ChatsTable),
		resolved: db.Mongo.Collection(model.ResolvedRequestsTable),
	}
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func (r *MongoRepository) CreateRequest(ctx context.Context, request model.RequestItem) error {
	if _, err := r.requests.InsertOne(ctx, request); err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetRequest(ctx context.Context, id string) (model.RequestItem, error) {
	var request model.RequestItem
	err := r.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if database.IsNoDocuments(err) {
			return model.RequestItem{}, ErrNotFound
		}
		return model.RequestItem{}, fmt.Errorf("find request: %w", err)
	}
	return request, nil
}

func (r *MongoRepository) UpdateRequest(ctx context.Context, id string, update RequestUpdate, updatedAt time.Time) (model.RequestItem, error) {
	set := bson.M{"updatedAt": updatedAt}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.AgentID != nil {
		set["agentId"] = *update.AgentID
	}
	if update.SocketID != nil {
		set["socketId"] = *update.SocketID
	}

	var request model.RequestItem
	err := r.requests.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter()).Decode(&request)
	if err != nil {
		if database.IsNoDocuments(err) {
			return model.RequestItem{}, ErrNotFound
		}
		return model.RequestItem{}, fmt.Errorf("update request: %w", err)
	}
	return request, nil
}

func (r *MongoRepository) DeleteRequest(ctx context.Context, id string) error {
	res, err := r.requests.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) ListRequests(ctx context.Context, statuses []model.RequestStatus) ([]model.RequestItem, error) {
	filter := bson.M{}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	cursor, err := r.requests.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := make([]model.RequestItem, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	return requests, nil
}

func (r *MongoRepository) CreateChat(ctx context.Context, chat model.ChatItem) error {
	if _, err := r.chats.InsertOne(ctx, chat); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetChat(ctx context.Context, chatID string) (model.ChatItem, error) {
	var chat model.ChatItem
	err := r.chats.FindOne(ctx, bson.M{"_id": chatID}).Decode(&chat)
	if err != nil {
		if database.IsNoDocuments(err) {
			return model.ChatItem{}, ErrNotFound
		}
		return model.ChatItem{}, fmt.Errorf("find chat: %w", err)
	}
	return chat, nil
}

func (r *MongoRepository) UpdateChat(ctx context.Context, chatID string, update ChatUpdate, updatedAt time.Time) (model.ChatItem, error) {
	set := bson.M{"updatedAt": updatedAt}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.AgentID != nil {
		set["agentId"] = *update.AgentID
	}
	if update.SocketID != nil {
		set["socketId"] = *update.SocketID
	}
	if update.ResolutionNote != nil {
		set["resolutionNote"] = *update.ResolutionNote
	}

	return r.findAndUpdateChat(ctx, bson.M{"_id": chatID}, bson.M{"$set": set})
}

func (r *MongoRepository) AppendMessage(ctx context.Context, chatID string, message model.ChatMessage, updatedAt time.Time) (model.ChatItem, error) {
	return r.findAndUpdateChat(ctx, bson.M{"_id": chatID}, bson.M{
		"$push": bson.M{"messages": message},
		"$set":  bson.M{"updatedAt": updatedAt},
	})
}

func (r *MongoRepository) SetMessageStatus(ctx context.Context, chatID, messageID string, status model.MessageStatus) (model.ChatMessage, error) {
	chat, err := r.findAndUpdateChat(ctx,
		bson.M{"_id": chatID, "messages.id": messageID},
		bson.M{"$set": bson.M{"messages.$.status": status}},
	)
	if err != nil {
		return model.ChatMessage{}, err
	}
	idx := chat.FindMessage(messageID)
	if idx < 0 {
		return model.ChatMessage{}, ErrNotFound
	}
	return chat.Messages[idx], nil
}

func (r *MongoRepository) SetMessageStatusIf(ctx context.Context, chatID, messageID string, from, to model.MessageStatus) (model.ChatMessage, bool, error) {
	chat, err := r.findAndUpdateChat(ctx,
		bson.M{"_id": chatID, "messages": bson.M{"$elemMatch": bson.M{"id": messageID, "status": from}}},
		bson.M{"$set": bson.M{"messages.$.status": to}},
	)
	applied := true
	if errors.Is(err, ErrNotFound) {
		applied = false
		chat, err = r.GetChat(ctx, chatID)
	}
	if err != nil {
		return model.ChatMessage{}, false, err
	}
	idx := chat.FindMessage(messageID)
	if idx < 0 {
		return model.ChatMessage{}, false, ErrNotFound
	}
	return chat.Messages[idx], applied, nil
}

func (r *MongoRepository) findAndUpdateChat(ctx context.Context, filter, update bson.M) (model.ChatItem, error) {
	var chat model.ChatItem
	err := r.chats.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&chat)
	if err != nil {
		if database.IsNoDocuments(err) {
			return model.ChatItem{}, ErrNotFound
		}
		return model.ChatItem{}, fmt.Errorf("update chat: %w", err)
	}
	return chat, nil
}

func (r *MongoRepository) ListChats(ctx context.Context, filter ChatFilter) ([]model.ChatItem, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.AgentID != "" {
		query["agentId"] = filter.AgentID
	}

	cursor, err := r.chats.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find chats: %w", err)
	}
	defer cursor.Close(ctx)

	chats := make([]model.ChatItem, 0)
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	return chats, nil
}

func (r *MongoRepository) CreateResolved(ctx context.Context, item model.ResolvedRequestItem) error {
	if _, err := r.resolved.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("insert resolved request: %w", err)
	}
	return nil
}

func (r *MongoRepository) ListResolved(ctx context.Context) ([]model.ResolvedRequestItem, error) {
	cursor, err := r.resolved.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find resolved requests: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]model.ResolvedRequestItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode resolved requests: %w", err)
	}
	return items, nil
}
