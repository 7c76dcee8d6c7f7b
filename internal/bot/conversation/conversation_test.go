package conversation

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/homeworkbot/internal/bot/metrics"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/models"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/repositories/submissions"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/repositories/users"
	"github.com/dmitrijs2005/homeworkbot/internal/common"
	"github.com/dmitrijs2005/homeworkbot/internal/dbx"
	"github.com/dmitrijs2005/homeworkbot/internal/logging"
)

// -------- test fakes --------

type fakeUsersRepo struct {
	byID      map[int64]*models.User
	getErr    error
	createErr error
	created   []*models.User
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, user)
	return user, nil
}

type fakeRM struct {
	usersRepo *fakeUsersRepo
}

func (f *fakeRM) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (f *fakeRM) Users(db dbx.DBTX) users.Repository                  { return f.usersRepo }
func (f *fakeRM) Submissions(db dbx.DBTX) submissions.Repository      { return nil }

type sentMessage struct {
	kind   string // "text", "contact", "remove"
	chatID int64
	text   string
}

type fakeMessenger struct {
	sent []sentMessage
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{kind: "text", chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) RequestContact(ctx context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{kind: "contact", chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) RemoveKeyboard(ctx context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{kind: "remove", chatID: chatID, text: text})
	return nil
}

func newTestRegistration(t *testing.T, repo *fakeUsersRepo) (*Registration, *fakeMessenger, *metrics.Metrics, *sql.DB) {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	msgr := &fakeMessenger{}
	mt := metrics.New(prometheus.NewRegistry())
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return NewRegistration(db, &fakeRM{usersRepo: repo}, msgr, mt, logger), msgr, mt, db
}

// -------- entry command --------

func TestStart_FreshUser_PromptsForContact(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{}}
	reg, msgr, _, _ := newTestRegistration(t, repo)

	require.NoError(t, reg.Start(context.Background(), 555, "alice"))

	require.Len(t, msgr.sent, 1)
	assert.Equal(t, "contact", msgr.sent[0].kind)
	assert.Equal(t, int64(555), msgr.sent[0].chatID)
	assert.True(t, reg.Awaiting(555))
	assert.Empty(t, repo.created, "entry alone must not create a profile")
}

func TestStart_RegisteredUser_ShortCircuits(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{
		555: {ID: 555, UserName: "alice", FullName: "Alice"},
	}}
	reg, msgr, _, _ := newTestRegistration(t, repo)

	require.NoError(t, reg.Start(context.Background(), 555, "alice"))

	require.Len(t, msgr.sent, 1)
	assert.Equal(t, "text", msgr.sent[0].kind)
	assert.Contains(t, msgr.sent[0].text, "Alice")
	assert.Contains(t, msgr.sent[0].text, MsgAlreadyRegistered)
	assert.False(t, reg.Awaiting(555))
	assert.Empty(t, repo.created)
}

func TestStart_RegisteredUser_Idempotent(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{
		555: {ID: 555, FullName: "Alice"},
	}}
	reg, msgr, _, _ := newTestRegistration(t, repo)

	require.NoError(t, reg.Start(context.Background(), 555, "alice"))
	require.NoError(t, reg.Start(context.Background(), 555, "alice"))

	assert.Len(t, msgr.sent, 2)
	assert.Empty(t, repo.created, "no profile may be created for a registered user")
}

func TestStart_LookupError_RepliesGenericFailure(t *testing.T) {
	repo := &fakeUsersRepo{getErr: errors.New("db down")}
	reg, msgr, _, _ := newTestRegistration(t, repo)

	require.NoError(t, reg.Start(context.Background(), 555, "alice"))

	require.Len(t, msgr.sent, 1)
	assert.Equal(t, MsgFailure, msgr.sent[0].text)
	assert.False(t, reg.Awaiting(555))
}

// -------- contact event --------

func TestContact_CompletesRegistration(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{}}
	reg, msgr, mt, _ := newTestRegistration(t, repo)
	ctx := context.Background()

	require.NoError(t, reg.Start(ctx, 555, "alice"))
	require.NoError(t, reg.Contact(ctx, 555, Contact{OwnerID: 555, FirstName: "Alice", LastName: ""}))

	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, int64(555), created.ID)
	assert.Equal(t, "alice", created.UserName)
	assert.Equal(t, "Alice", created.FullName, "empty last name must not leave a trailing space")

	last := msgr.sent[len(msgr.sent)-1]
	assert.Equal(t, "remove", last.kind)
	assert.Contains(t, last.text, "Alice")

	assert.False(t, reg.Awaiting(555))
	assert.Equal(t, float64(1), testutil.ToFloat64(mt.RegistrationsCompleted))
}

func TestContact_JoinsFirstAndLastName(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{}}
	reg, _, _, _ := newTestRegistration(t, repo)
	ctx := context.Background()

	require.NoError(t, reg.Start(ctx, 556, "bob"))
	require.NoError(t, reg.Contact(ctx, 556, Contact{OwnerID: 556, FirstName: "Bob", LastName: "Jones"}))

	require.Len(t, repo.created, 1)
	assert.Equal(t, "Bob Jones", repo.created[0].FullName)
}

func TestContact_WithoutOpenDialog_Ignored(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{}}
	reg, msgr, _, _ := newTestRegistration(t, repo)

	require.NoError(t, reg.Contact(context.Background(), 555, Contact{OwnerID: 555, FirstName: "Alice"}))

	assert.Empty(t, msgr.sent)
	assert.Empty(t, repo.created)
}

func TestContact_StoreError_RepliesGenericFailure(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{}, createErr: errors.New("db down")}
	reg, msgr, mt, _ := newTestRegistration(t, repo)
	ctx := context.Background()

	require.NoError(t, reg.Start(ctx, 555, "alice"))
	require.NoError(t, reg.Contact(ctx, 555, Contact{OwnerID: 555, FirstName: "Alice"}))

	last := msgr.sent[len(msgr.sent)-1]
	assert.Equal(t, "remove", last.kind)
	assert.Equal(t, MsgFailure, last.text)
	assert.False(t, reg.Awaiting(555), "the dialog must not be retried after a store error")
	assert.Equal(t, float64(0), testutil.ToFloat64(mt.RegistrationsCompleted))
}

func TestContact_DuplicateCreate_RepliesAlreadyRegistered(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{}, createErr: common.ErrorAlreadyExists}
	reg, msgr, _, _ := newTestRegistration(t, repo)
	ctx := context.Background()

	require.NoError(t, reg.Start(ctx, 555, "alice"))
	require.NoError(t, reg.Contact(ctx, 555, Contact{OwnerID: 555, FirstName: "Alice"}))

	last := msgr.sent[len(msgr.sent)-1]
	assert.Equal(t, MsgAlreadyRegistered, last.text)
	assert.False(t, reg.Awaiting(555))
}

// -------- cancel command --------

func TestCancel_FromAwaitingContact_LeavesStoreUnchanged(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{}}
	reg, msgr, _, _ := newTestRegistration(t, repo)
	ctx := context.Background()

	require.NoError(t, reg.Start(ctx, 555, "alice"))
	require.True(t, reg.Awaiting(555))

	require.NoError(t, reg.Cancel(ctx, 555))

	last := msgr.sent[len(msgr.sent)-1]
	assert.Equal(t, MsgCancelled, last.text)
	assert.False(t, reg.Awaiting(555))
	assert.Empty(t, repo.created)
}

func TestCancel_WithoutDialog_StillReplies(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{}}
	reg, msgr, _, _ := newTestRegistration(t, repo)

	require.NoError(t, reg.Cancel(context.Background(), 555))
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, MsgCancelled, msgr.sent[0].text)
}

func TestMessages_ContainNoPlaceholders(t *testing.T) {
	for _, m := range []string{MsgWelcome, MsgAlreadyRegistered, MsgCancelled, MsgFailure} {
		assert.False(t, strings.Contains(m, "%"), "reply %q must be a complete sentence", m)
	}
}
