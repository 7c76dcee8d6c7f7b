// Package bot initializes and runs the homework submission bot. It wires the
// database, object storage, staging area, Telegram transport and metrics
// endpoint together and handles graceful shutdown.
package bot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/homeworkbot/internal/bot/config"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/conversation"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/metrics"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/pipeline"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/staging"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/storage"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/telegram"
	"github.com/dmitrijs2005/homeworkbot/internal/bot/workerpool"
	"github.com/dmitrijs2005/homeworkbot/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	router *telegram.Router
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	area, err := staging.NewArea(cfg.StagingDir)
	if err != nil {
		return nil, fmt.Errorf("staging init error: %w", err)
	}

	store := storage.NewS3Client(cfg.S3RootUser, cfg.S3RootPassword, cfg.S3Bucket,
		cfg.S3Region, cfg.S3BaseEndpoint)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("bot api init error: %w", err)
	}

	msgr := telegram.NewMessenger(api)
	mt := metrics.New(prometheus.DefaultRegisterer)

	conv := conversation.NewRegistration(db, rm, msgr, mt, logger)
	pipe := pipeline.New(db, rm, store, area, msgr, mt, logger, cfg)
	pool := workerpool.New(cfg.WorkerPoolSize)

	router := telegram.NewRouter(api, msgr, conv, pipe, pool, logger)

	return &App{config: cfg, logger: logger, db: db, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startMetricsServer(ctx context.Context) {

	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: metrics.Handler()}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, "metrics server failed", "error", err)
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.router.Run(ctx); err != nil {
			app.logger.Error(ctx, "update loop failed", "error", err)
		}
		cancelFunc()
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
}
