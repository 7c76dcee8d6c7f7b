package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/homeworkbot/internal/bot/repositories/submissions"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/repositories/users"
	"github.com/dmitrijs2005/homeworkbot/internal/dbx"
)

// RepositoryManager vends repositories bound to a DBTX, so callers can pass
// either a plain connection or a transaction. Connections are therefore held
// only for the duration of a single repository call.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Submissions(db dbx.DBTX) submissions.Repository
}
