package admin

import (
	"context"
	"errors"

	"support-desk/internal/database"
	"support-desk/internal/model"
)

var (
	ErrNotFound = errors.New("admin repository: not found")
	ErrConflict = errors.New("admin repository: username taken")
)

type Repository interface {
	CreateAdmin(ctx context.Context, admin model.AdminItem) error
	GetAdmin(ctx context.Context, id string) (model.AdminItem, error)
	GetAdminByUsername(ctx context.Context, username string) (model.AdminItem, error)
}

func NewRepository(db *database.Database) Repository {
	if db.UsesMongo() {
		return NewMongoRepository(db)
	}
	return NewDynamoRepository(db)
}
