package appointment

import (
	"context"
	"errors"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"
)

var (
	ErrNotFound  = errors.New("appointment repository: not found")
	ErrDuplicate = errors.New("appointment repository: slot already booked")
)

type Repository interface {
	// CreateAppointment returns ErrDuplicate when the date/time slot is taken.
	CreateAppointment(ctx context.Context, appointment model.AppointmentItem) error
	ListAppointments(ctx context.Context) ([]model.AppointmentItem, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status model.AppointmentStatus, updatedAt time.Time) (model.AppointmentItem, error)
}

func NewRepository(db *database.Database) Repository {
	if db.UsesMongo() {
		return NewMongoRepository(db)
	}
	return NewDynamoRepository(db)
}
