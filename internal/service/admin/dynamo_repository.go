package admin

import (
	"context"
	"errors"

	"support-desk/internal/database"
	"support-desk/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateAdmin(ctx context.Context, admin model.AdminItem) error {
	if _, err := r.GetAdminByUsername(ctx, admin.Username); err == nil {
		return ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	err := r.db.Client.PutItemIfNotExists(ctx, model.AdminsTable, "id", admin)
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrConflict
	}
	return err
}

func (r *DynamoRepository) GetAdmin(ctx context.Context, id string) (model.AdminItem, error) {
	var admin model.AdminItem
	if err := r.db.Client.GetItem(ctx, model.AdminsTable, database.Key("id", id), &admin); err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.AdminItem{}, ErrNotFound
		}
		return model.AdminItem{}, err
	}
	return admin, nil
}

func (r *DynamoRepository) GetAdminByUsername(ctx context.Context, username string) (model.AdminItem, error) {
	var admins []model.AdminItem
	err := r.db.Client.ScanInto(
		ctx,
		model.AdminsTable,
		"#username = :username",
		map[string]types.AttributeValue{":username": database.AttrString(username)},
		map[string]string{"#username": "username"},
		&admins,
	)
	if err != nil {
		return model.AdminItem{}, err
	}
	if len(admins) == 0 {
		return model.AdminItem{}, ErrNotFound
	}
	return admins[0], nil
}
