// Package conversation implements the registration dialog: a per-user state
// machine that collects a shared contact card and creates the student record.
package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/homeworkbot/internal/bot/metrics"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/models"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/homeworkbot/internal/common"
	"github.com/dmitrijs2005/homeworkbot/internal/logging"
)

// User-facing replies for every terminal outcome of a dialog step.
const (
	MsgWelcome = "Welcome! This is the homework submission bot.\n" +
		"To get started, please tap the button below to share your contact."
	MsgAlreadyRegistered = "You are already registered."
	MsgCancelled         = "Registration cancelled."
	MsgFailure           = "Registration failed. Please try again later."
)

// Messenger is the chat-transport capability the dialog needs: plain replies,
// a one-shot "share contact" keyboard, and replies that also dismiss it.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	RequestContact(ctx context.Context, chatID int64, text string) error
	RemoveKeyboard(ctx context.Context, chatID int64, text string) error
}

// Contact is the payload of a shared contact card.
type Contact struct {
	OwnerID   int64
	FirstName string
	LastName  string
}

// dialog is the per-user scratch data held between the entry command and the
// contact event. Presence in the map is the AWAITING_CONTACT state.
type dialog struct {
	handle string
}

// Registration drives the contact-collection dialog, keyed by user ID.
// State lives only in process memory; a dialog abandoned mid-way stays in the
// map until the user finishes or cancels it.
type Registration struct {
	db        *sql.DB
	repos     repomanager.RepositoryManager
	messenger Messenger
	metrics   *metrics.Metrics
	logger    logging.Logger

	mu      sync.Mutex
	pending map[int64]*dialog
}

func NewRegistration(db *sql.DB, repos repomanager.RepositoryManager, m Messenger, mt *metrics.Metrics, logger logging.Logger) *Registration {
	return &Registration{
		db:        db,
		repos:     repos,
		messenger: m,
		metrics:   mt,
		logger:    logger,
		pending:   make(map[int64]*dialog),
	}
}

// Awaiting reports whether the user has an open dialog waiting for a contact.
func (r *Registration) Awaiting(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[userID]
	return ok
}

// Start handles the entry command. A registered user gets a short-circuit
// reply; otherwise the handle is captured and the contact keyboard is shown.
// Re-entering an open dialog restarts it with fresh scratch data.
func (r *Registration) Start(ctx context.Context, userID int64, handle string) error {

	repo := r.repos.Users(r.db)
	user, err := repo.GetByID(ctx, userID)

	switch {
	case err == nil:
		r.discard(userID)
		return r.messenger.SendText(ctx, userID, fmt.Sprintf("Welcome back, %s! %s", user.FullName, MsgAlreadyRegistered))

	case errors.Is(err, common.ErrorNotFound):
		r.mu.Lock()
		r.pending[userID] = &dialog{handle: handle}
		r.mu.Unlock()
		r.logger.Info(ctx, "registration started", "user_id", userID, "handle", handle)
		return r.messenger.RequestContact(ctx, userID, MsgWelcome)

	default:
		r.logger.Error(ctx, "registration lookup failed", "user_id", userID, "error", err)
		r.discard(userID)
		return r.messenger.SendText(ctx, userID, MsgFailure)
	}
}

// Contact completes the dialog with a shared contact card. Events arriving
// without an open dialog are ignored (the router filters on Awaiting, this is
// a second line of defence).
func (r *Registration) Contact(ctx context.Context, userID int64, c Contact) error {

	r.mu.Lock()
	d, ok := r.pending[userID]
	if ok {
		delete(r.pending, userID)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}

	fullName := strings.TrimSpace(c.FirstName + " " + c.LastName)

	user := &models.User{ID: c.OwnerID, UserName: d.handle, FullName: fullName}
	repo := r.repos.Users(r.db)

	_, err := repo.Create(ctx, user)
	switch {
	case err == nil:
		r.metrics.IncRegistration()
		r.logger.Info(ctx, "user registered", "user_id", c.OwnerID, "full_name", fullName)
		return r.messenger.RemoveKeyboard(ctx, userID,
			fmt.Sprintf("Thank you, %s! You are registered now.\nYou can hand in your work with /submit.", fullName))

	case errors.Is(err, common.ErrorAlreadyExists):
		// Lost a race against another completion for the same ID.
		r.logger.Warn(ctx, "duplicate registration rejected", "user_id", c.OwnerID)
		return r.messenger.RemoveKeyboard(ctx, userID, MsgAlreadyRegistered)

	default:
		r.logger.Error(ctx, "registration failed", "user_id", c.OwnerID, "error", err)
		return r.messenger.RemoveKeyboard(ctx, userID, MsgFailure)
	}
}

// Cancel aborts the dialog from any state.
func (r *Registration) Cancel(ctx context.Context, userID int64) error {
	r.discard(userID)
	r.logger.Info(ctx, "registration cancelled", "user_id", userID)
	return r.messenger.RemoveKeyboard(ctx, userID, MsgCancelled)
}

func (r *Registration) discard(userID int64) {
	r.mu.Lock()
	delete(r.pending, userID)
	r.mu.Unlock()
}
