package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoRepository claims the slot item first so a second booking for the
// same date and time fails its conditional put.
type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateAppointment(ctx context.Context, appointment model.AppointmentItem) error {
	slot := model.AppointmentSlotItem{
		Slot:          model.AppointmentSlotKey(appointment.Date, appointment.Time),
		AppointmentID: appointment.ID,
	}
	if err := r.db.Client.PutItemIfNotExists(ctx, model.AppointmentSlotsTable, "slot", slot); err != nil {
		if errors.Is(err, database.ErrConditionFailed) {
			return ErrDuplicate
		}
		return fmt.Errorf("claim appointment slot: %w", err)
	}

	if err := r.db.Client.PutItem(ctx, model.AppointmentsTable, appointment); err != nil {
		err = fmt.Errorf("put appointment: %w", err)
		if delErr := r.db.Client.DeleteItem(ctx, model.AppointmentSlotsTable, database.Key("slot", slot.Slot)); delErr != nil {
			err = errors.Join(err, fmt.Errorf("release slot %s: %w", slot.Slot, delErr))
		}
		return err
	}
	return nil
}

func (r *DynamoRepository) ListAppointments(ctx context.Context) ([]model.AppointmentItem, error) {
	appointments := make([]model.AppointmentItem, 0)
	if err := r.db.Client.ScanInto(ctx, model.AppointmentsTable, "", nil, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *DynamoRepository) UpdateAppointmentStatus(ctx context.Context, id string, status model.AppointmentStatus, updatedAt time.Time) (model.AppointmentItem, error) {
	at, err := attributevalue.Marshal(updatedAt)
	if err != nil {
		return model.AppointmentItem{}, fmt.Errorf("marshal updatedAt: %w", err)
	}

	var appointment model.AppointmentItem
	err = r.db.Client.UpdateItem(
		ctx,
		model.AppointmentsTable,
		database.Key("id", id),
		"SET #status = :status, #updatedAt = :updatedAt",
		map[string]types.AttributeValue{
			":status":    database.AttrString(string(status)),
			":updatedAt": at,
		},
		map[string]string{"#status": "status", "#updatedAt": "updatedAt"},
		&appointment,
	)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.AppointmentItem{}, ErrNotFound
		}
		return model.AppointmentItem{}, err
	}
	return appointment, nil
}
