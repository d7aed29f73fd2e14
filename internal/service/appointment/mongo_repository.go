package appointment

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

// MongoRepository relies on the unique (appointmentDate, appointmentTime)
// index created by database.EnsureIndexes.
type MongoRepository struct {
	appointments *mongo.Collection
}

func NewMongoRepository(db *database.Database) Repository {
	return &MongoRepository{appointments: db.Mongo.Collection(model.AppointmentsTable)}
}

func (r *MongoRepository) CreateAppointment(ctx context.Context, appointment model.AppointmentItem) error {
	if _, err := r.appointments.InsertOne(ctx, appointment); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *MongoRepository) ListAppointments(ctx context.Context) ([]model.AppointmentItem, error) {
	sort := bson.D{{Key: "appointmentDate", Value: 1}, {Key: "appointmentTime", Value: 1}}
	cursor, err := r.appointments.Find(ctx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := make([]model.AppointmentItem, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return appointments, nil
}

func (r *MongoRepository) UpdateAppointmentStatus(ctx context.Context, id string, status model.AppointmentStatus, updatedAt time.Time) (model.AppointmentItem, error) {
	var appointment model.AppointmentItem
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": updatedAt}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.appointments.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&appointment); err != nil {
		if database.IsNoDocuments(err) {
			return model.AppointmentItem{}, ErrNotFound
		}
		return model.AppointmentItem{}, fmt.Errorf("update appointment: %w", err)
	}
	return appointment, nil
}
