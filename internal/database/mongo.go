package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"support-desk/internal/config"
	"support-desk/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoConnection connects to MongoDB and pings it before returning.
func NewMongoConnection(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		model.AgentsTable: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "agentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		model.AdminsTable: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		model.AppointmentsTable: {
			{Keys: bson.D{{Key: "appointmentDate", Value: 1}, {Key: "appointmentTime", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		model.ChatsTable: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "agentId", Value: 1}, {Key: "status", Value: 1}}},
		},
		model.RequestsTable: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsNoDocuments reports whether err means FindOne matched nothing.
func IsNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
