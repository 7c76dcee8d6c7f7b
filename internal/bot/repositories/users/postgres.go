// Package users persists registered students.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/homeworkbot/internal/bot/models"
	"github.com/dmitrijs2005/homeworkbot/internal/common"
	"github.com/dmitrijs2005/homeworkbot/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the user. Two registrations racing on the same ID resolve
// deterministically: the conflicting insert returns common.ErrorAlreadyExists
// instead of leaving the outcome to the driver.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, username, full_name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING registered_at
		 `

	username := sql.NullString{String: user.UserName, Valid: user.UserName != ""}

	err := r.db.QueryRowContext(ctx, query,
		user.ID, username, user.FullName).Scan(&user.RegisteredAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, username, full_name, registered_at FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	var username sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &username, &user.FullName, &user.RegisteredAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.UserName = username.String
	return user, nil
}
