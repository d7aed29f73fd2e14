package ticket

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

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateTicket(ctx context.Context, ticket model.TicketItem) error {
	return r.db.Client.PutItem(ctx, model.TicketsTable, ticket)
}

func (r *DynamoRepository) GetTicket(ctx context.Context, id string) (model.TicketItem, error) {
	var ticket model.TicketItem
	if err := r.db.Client.GetItem(ctx, model.TicketsTable, database.Key("id", id), &ticket); err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.TicketItem{}, ErrNotFound
		}
		return model.TicketItem{}, err
	}
	return ticket, nil
}

// ListTickets scans the table; the service orders the result.
func (r *DynamoRepository) ListTickets(ctx context.Context) ([]model.TicketItem, error) {
	tickets := make([]model.TicketItem, 0)
	if err := r.db.Client.ScanInto(ctx, model.TicketsTable, "", nil, nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *DynamoRepository) UpdateTicketStatus(ctx context.Context, id string, status model.TicketStatus, updatedAt time.Time) (model.TicketItem, error) {
	at, err := attributevalue.Marshal(updatedAt)
	if err != nil {
		return model.TicketItem{}, fmt.Errorf("marshal updatedAt: %w", err)
	}

	var ticket model.TicketItem
	err = r.db.Client.UpdateItem(
		ctx,
		model.TicketsTable,
		database.Key("id", id),
		"SET #status = :status, #updatedAt = :updatedAt",
		map[string]types.AttributeValue{
			":status":    database.AttrString(string(status)),
			":updatedAt": at,
		},
		map[string]string{"#status": "status", "#updatedAt": "updatedAt"},
		&ticket,
	)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.TicketItem{}, ErrNotFound
		}
		return model.TicketItem{}, err
	}
	return ticket, nil
}
