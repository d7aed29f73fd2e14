package ticket

import (
	"context"
	"errors"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"
)

var ErrNotFound = errors.New("ticket repository: not found")

type Repository interface {
	CreateTicket(ctx context.Context, ticket model.TicketItem) error
	GetTicket(ctx context.Context, id string) (model.TicketItem, error)
	ListTickets(ctx context.Context) ([]model.TicketItem, error)
	UpdateTicketStatus(ctx context.Context, id string, status model.TicketStatus, updatedAt time.Time) (model.TicketItem, error)
}

func NewRepository(db *database.Database) Repository {
	if db.UsesMongo() {
		return NewMongoRepository(db)
	}
	return NewDynamoRepository(db)
}
