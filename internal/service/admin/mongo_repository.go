package admin

import (
	"context"
	"fmt"

	"support-desk/internal/database"
	"support-desk/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoRepository struct {
	admins *mongo.Collection
}

func NewMongoRepository(db *database.Database) Repository {
	return &MongoRepository{admins: db.Mongo.Collection(model.AdminsTable)}
}

func (r *MongoRepository) CreateAdmin(ctx context.Context, admin model.AdminItem) error {
	if _, err := r.admins.InsertOne(ctx, admin); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetAdmin(ctx context.Context, id string) (model.AdminItem, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetAdminByUsername(ctx context.Context, username string) (model.AdminItem, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (model.AdminItem, error) {
	var admin model.AdminItem
	if err := r.admins.FindOne(ctx, filter).Decode(&admin); err != nil {
		if database.IsNoDocuments(err) {
			return model.AdminItem{}, ErrNotFound
		}
		return model.AdminItem{}, fmt.Errorf("find admin: %w", err)
	}
	return admin, nil
}
