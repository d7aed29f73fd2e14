package ticket

import (
	"context"
	"fmt"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	tickets *mongo.Collection
}

func NewMongoRepository(db *database.Database) Repository {
	return &MongoRepository{tickets: db.Mongo.Collection(model.TicketsTable)}
}

func (r *MongoRepository) CreateTicket(ctx context.Context, ticket model.TicketItem) error {
	if _, err := r.tickets.InsertOne(ctx, ticket); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetTicket(ctx context.Context, id string) (model.TicketItem, error) {
	var ticket model.TicketItem
	if err := r.tickets.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket); err != nil {
		if database.IsNoDocuments(err) {
			return model.TicketItem{}, ErrNotFound
		}
		return model.TicketItem{}, fmt.Errorf("find ticket: %w", err)
	}
	return ticket, nil
}

func (r *MongoRepository) ListTickets(ctx context.Context) ([]model.TicketItem, error) {
	cursor, err := r.tickets.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find tickets: %w", err)
	}
	defer cursor.Close(ctx)

	tickets := make([]model.TicketItem, 0)
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return tickets, nil
}

func (r *MongoRepository) UpdateTicketStatus(ctx context.Context, id string, status model.TicketStatus, updatedAt time.Time) (model.TicketItem, error) {
	var ticket model.TicketItem
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": updatedAt}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.tickets.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&ticket); err != nil {
		if database.IsNoDocuments(err) {
			return model.TicketItem{}, ErrNotFound
		}
		return model.TicketItem{}, fmt.Errorf("update ticket: %w", err)
	}
	return ticket, nil
}
