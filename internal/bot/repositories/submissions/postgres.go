// Package submissions persists the append-only homework submission history.
package submissions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/homeworkbot/internal/bot/models"
	"github.com/dmitrijs2005/homeworkbot/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, sub *models.Submission) (*models.Submission, error) {

	query :=
		`INSERT INTO submissions (user_id, file_name, storage_key, submitted_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		sub.UserID, sub.FileName, sub.StorageKey, sub.SubmittedAt).Scan(&sub.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return sub, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Submission, error) {
	query :=
		`SELECT id, user_id, file_name, storage_key, submitted_at FROM submissions
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Submission
	for rows.Next() {
		sub := &models.Submission{}
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.FileName, &sub.StorageKey, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
