package users

import (
	"context"

	"github.com/dmitrijs2005/homeworkbot/internal/bot/models"
)

type Repository interface {
	// Create inserts a new user. Returns common.ErrorAlreadyExists if a user
	// with the same ID is already registered.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByID returns the user or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
