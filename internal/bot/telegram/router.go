package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/homeworkbot/internal/bot/conversation"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/pipeline"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/workerpool"
	"github.com/dmitrijs2005/homeworkbot/internal/logging"
)

const (
	MsgSubmitPrompt = "Send me the document you want to submit."
	MsgNoDocument   = "That does not look like a document. Attach a file to submit it."
	MsgShareContact = "Please use the button below to share your contact, or send /cancel."

	helpText = "I collect homework submissions.\n\n" +
		"/start - register\n" +
		"/submit - submit a document\n" +
		"/list - show your submissions\n" +
		"/cancel - cancel registration\n" +
		"/help - this message"
)

const updateTimeoutSeconds = 30

// Router receives updates over long polling and dispatches them to the
// registration conversation and the submission pipeline. Commands and contact
// events are handled inline; document processing goes through the worker pool.
type Router struct {
	bot    *tgbotapi.BotAPI
	msgr   *Messenger
	conv   *conversation.Registration
	pipe   *pipeline.Pipeline
	pool   *workerpool.Pool
	logger logging.Logger
}

func NewRouter(bot *tgbotapi.BotAPI, msgr *Messenger, conv *conversation.Registration,
	pipe *pipeline.Pipeline, pool *workerpool.Pool, logger logging.Logger) *Router {
	return &Router{bot: bot, msgr: msgr, conv: conv, pipe: pipe, pool: pool, logger: logger}
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// document uploads to finish before returning.
func (r *Router) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds

	updates := r.bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		r.bot.StopReceivingUpdates()
	}()

	r.logger.Info(ctx, "update loop started", "bot", r.bot.Self.UserName)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		r.dispatch(ctx, update.Message)
	}

	r.pool.Wait()
	r.logger.Info(ctx, "update loop stopped")
	return nil
}

func (r *Router) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		r.dispatchCommand(ctx, chatID, msg)
		return
	}

	if msg.Contact != nil {
		contact := conversation.Contact{
			OwnerID:   msg.Contact.UserID,
			FirstName: msg.Contact.FirstName,
			LastName:  msg.Contact.LastName,
		}
		if err := r.conv.Contact(ctx, chatID, contact); err != nil {
			r.logger.Error(ctx, "contact handling failed", "chat_id", chatID, "error", err)
		}
		return
	}

	if msg.Document != nil {
		r.submitDocument(ctx, chatID, msg.Document)
		return
	}

	notice := MsgNoDocument
	if r.conv.Awaiting(chatID) {
		notice = MsgShareContact
	}
	if err := r.msgr.SendText(ctx, chatID, notice); err != nil {
		r.logger.Error(ctx, "reply failed", "chat_id", chatID, "error", err)
	}
}

func (r *Router) dispatchCommand(ctx context.Context, chatID int64, msg *tgbotapi.Message) {
	var userName string
	if msg.From != nil {
		userName = msg.From.UserName
	}

	var err error
	switch msg.Command() {
	case "start":
		err = r.conv.Start(ctx, chatID, userName)
	case "cancel":
		err = r.conv.Cancel(ctx, chatID)
	case "submit":
		err = r.msgr.SendText(ctx, chatID, MsgSubmitPrompt)
	case "list":
		err = r.pipe.History(ctx, chatID)
	case "help":
		err = r.msgr.SendText(ctx, chatID, helpText)
	default:
		err = r.msgr.SendText(ctx, chatID, helpText)
	}

	if err != nil {
		r.logger.Error(ctx, "command handling failed",
			"command", msg.Command(), "chat_id", chatID, "error", err)
	}
}

func (r *Router) submitDocument(ctx context.Context, chatID int64, doc *tgbotapi.Document) {
	src := &documentSource{bot: r.bot, fileID: doc.FileID}
	fileName := doc.FileName
	mimeType := doc.MimeType

	err := r.pool.Go(ctx, func() {
		// Submit reports failures to the user itself; the error here is
		// only for the log.
		if err := r.pipe.Submit(ctx, chatID, fileName, mimeType, src); err != nil {
			r.logger.Error(ctx, "submission pipeline failed", "chat_id", chatID, "error", err)
		}
	})
	if err != nil {
		r.logger.Error(ctx, "could not schedule submission", "chat_id", chatID, "error", err)
	}
}
