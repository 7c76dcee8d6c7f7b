// Package pipeline implements the homework submission flow: stage the inbound
// document locally, upload it to object storage, persist a submission record
// and report the outcome. The pipeline is stateless; every invocation is
// independent and produces exactly one reply.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/homeworkbot/internal/bot/config"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/metrics"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/models"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/staging"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/storage"
	"github.com/dmitrijs2005/homeworkbot/internal/common"
	"github.com/dmitrijs2005/homeworkbot/internal/logging"
)

// Fallbacks for documents arriving without a name or a mime type.
const (
	DefaultFileName = "document"
	DefaultMimeType = "application/octet-stream"
)

const (
	MsgNoSubmissions = "You have not submitted anything yet."
	MsgFailure       = "Could not process your file. Please try again later."
)

const timestampLayout = "02.01.2006 15:04"

// Replier sends a plain text reply to the user.
type Replier interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Source opens the remote document content for streaming. The transport
// adapter implements it on top of the chat platform's file API.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

type Pipeline struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	storage storage.Client
	staging *staging.Area
	replier Replier
	metrics *metrics.Metrics
	logger  logging.Logger

	downloadTimeout time.Duration
	uploadTimeout   time.Duration
}

func New(db *sql.DB, repos repomanager.RepositoryManager, store storage.Client,
	area *staging.Area, replier Replier, mt *metrics.Metrics, logger logging.Logger,
	cfg *config.Config) *Pipeline {
	return &Pipeline{
		db:              db,
		repos:           repos,
		storage:         store,
		staging:         area,
		replier:         replier,
		metrics:         mt,
		logger:          logger,
		downloadTimeout: cfg.DownloadTimeout,
		uploadTimeout:   cfg.UploadTimeout,
	}
}

// Submit runs the full pipeline for one inbound document. The staged file is
// removed on every exit path once the slot exists; the submission record is
// written only after the upload has been accepted. No step is retried.
func (p *Pipeline) Submit(ctx context.Context, userID int64, fileName, mimeType string, src Source) error {

	if fileName == "" {
		fileName = DefaultFileName
	}
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	slot, err := p.staging.NewSlot(fileName)
	if err != nil {
		p.fail(ctx, userID, "staging", err)
		return err
	}
	defer func() {
		if cerr := slot.Cleanup(); cerr != nil {
			p.logger.Warn(ctx, "staging cleanup failed", "path", slot.Path(), "error", cerr)
		}
	}()

	if err := p.download(ctx, slot.Path(), src); err != nil {
		p.fail(ctx, userID, "download", err)
		return err
	}
	p.logger.Info(ctx, "file staged", "name", fileName, "path", slot.Path())

	uctx, cancel := context.WithTimeout(ctx, p.uploadTimeout)
	defer cancel()

	key, err := p.storage.Put(uctx, userID, slot.Path(), fileName, mimeType)
	if err != nil {
		p.fail(ctx, userID, "upload", err)
		return err
	}

	sub := &models.Submission{UserID: userID, FileName: fileName, StorageKey: key, SubmittedAt: time.Now()}
	if _, err := p.repos.Submissions(p.db).Create(ctx, sub); err != nil {
		// The blob is already in storage with no record pointing at it.
		p.metrics.IncOrphanedUpload()
		p.logger.Error(ctx, "orphaned upload: record write failed after successful upload",
			"user_id", userID, "storage_key", key, "error", err)
		p.fail(ctx, userID, "record", err)
		return fmt.Errorf("%w: %v", common.ErrorStore, err)
	}

	p.metrics.IncSubmission(metrics.OutcomeOK)
	p.logger.Info(ctx, "submission accepted", "user_id", userID, "name", fileName, "storage_key", key)
	return p.replier.SendText(ctx, userID,
		fmt.Sprintf("File %q uploaded successfully.\nRemote id: %s", fileName, key))
}

// History replies with the user's submissions in insertion order, or with a
// distinct notice when there are none.
func (p *Pipeline) History(ctx context.Context, userID int64) error {

	subs, err := p.repos.Submissions(p.db).ListByUser(ctx, userID)
	if err != nil {
		p.logger.Error(ctx, "listing submissions failed", "user_id", userID, "error", err)
		if serr := p.replier.SendText(ctx, userID, MsgFailure); serr != nil {
			p.logger.Error(ctx, "reply failed", "user_id", userID, "error", serr)
		}
		return fmt.Errorf("%w: %v", common.ErrorStore, err)
	}

	if len(subs) == 0 {
		return p.replier.SendText(ctx, userID, MsgNoSubmissions)
	}

	var b strings.Builder
	b.WriteString("Your submissions:")
	for i, s := range subs {
		fmt.Fprintf(&b, "\n%d. %s — %s", i+1, s.FileName, s.SubmittedAt.Format(timestampLayout))
	}
	return p.replier.SendText(ctx, userID, b.String())
}

func (p *Pipeline) download(ctx context.Context, path string, src Source) error {
	dctx, cancel := context.WithTimeout(ctx, p.downloadTimeout)
	defer cancel()

	rc, err := src.Open(dctx)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorStaging, err)
	}
	defer rc.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", common.ErrorStaging, path, err)
	}

	if _, err := io.Copy(f, rc); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %v", common.ErrorStaging, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorStaging, err)
	}

	return nil
}

// fail logs the error, counts it and sends the single generic failure reply.
// The underlying cause never reaches the user.
func (p *Pipeline) fail(ctx context.Context, userID int64, step string, err error) {
	p.metrics.IncSubmission(metrics.OutcomeFailure)
	p.logger.Error(ctx, "submission failed", "step", step, "user_id", userID, "error", err)
	if serr := p.replier.SendText(ctx, userID, MsgFailure); serr != nil {
		p.logger.Error(ctx, "reply failed", "user_id", userID, "error", serr)
	}
}
