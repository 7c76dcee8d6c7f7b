package submissions

import (
	"context"

	"github.com/dmitrijs2005/homeworkbot/internal/bot/models"
)

type Repository interface {
	// Create appends a submission record and fills in its assigned ID.
	Create(ctx context.Context, sub *models.Submission) (*models.Submission, error)
	// ListByUser returns the user's submissions in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]*models.Submission, error)
}
