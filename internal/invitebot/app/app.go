package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/bot"
	httpapi "github.com/aussiebroadwan/invitebot/internal/invitebot/http"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/service"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store/drivers/sqlite"
	"github.com/aussiebroadwan/invitebot/pkg/cryptox"
	"github.com/aussiebroadwan/invitebot/pkg/ratelimit"
	"github.com/aussiebroadwan/invitebot/pkg/slogx"
	"github.com/aussiebroadwan/invitebot/pkg/telegram"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the bot together and owns its lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	telegram *telegram.Client
	links    *bot.ChannelLinks

	settingsService     *service.SettingsService
	inviteService       *service.InviteService
	adminFlow           *service.AdminFlow
	housekeepingService *service.HousekeepingService

	dispatcher *bot.Dispatcher
	poller     *bot.Poller

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "invitebot",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initTransport()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.checkPermissions(ctx)
	app.housekeepingService.Start()

	app.logger.Info("invite bot starting",
		"port", app.cfg.Port,
		"mode", app.cfg.UpdateMode,
		"token_fingerprint", cryptox.ShortFingerprint(app.cfg.BotToken),
		"version", BuildVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	pollerDone := make(chan error, 1)
	if app.poller != nil {
		go func() {
			pollerDone <- app.poller.Run(ctx)
		}()
	}

	var runErr error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutdown signal received")
	}

	// Stop polling before the store goes away.
	stop()
	if app.poller != nil {
		<-pollerDone
	}

	if err := app.Shutdown(); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return runErr
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down invite bot...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("invite bot stopped")
	return nil
}

// initDatabase opens the store, applies migrations and seeds settings.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() error {
	ctx := slogx.WithContext(context.Background(), app.logger)

	app.settingsService = &service.SettingsService{Store: app.db}
	if err := app.settingsService.Initialize(ctx); err != nil {
		return err
	}

	app.telegram = telegram.NewClient(app.cfg.TelegramAPIURL, app.cfg.BotToken)
	app.links = bot.NewChannelLinks(app.telegram, app.cfg.ChannelID)

	app.inviteService = &service.InviteService{
		Store:    app.db,
		Settings: app.settingsService,
		Links:    app.links,
		Limiter:  ratelimit.NewKeyed(app.cfg.InviteRateLimit()),
	}

	app.adminFlow = service.NewAdminFlow(app.settingsService, app.cfg.AdminID, app.cfg.AdminSessionTTL)

	app.housekeepingService = service.NewHousekeepingService(
		app.adminFlow,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) initTransport() {
	app.dispatcher = &bot.Dispatcher{
		Messenger: app.telegram,
		Settings:  app.settingsService,
		Invites:   app.inviteService,
		Admin:     app.adminFlow,
	}

	if app.cfg.UpdateMode == UpdateModePolling {
		app.poller = bot.NewPoller(app.telegram, app.dispatcher, app.logger, app.cfg.PollTimeout)
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	if app.cfg.UpdateMode == UpdateModeWebhook {
		router.Updates = app.dispatcher
		router.WebhookSecret = app.cfg.WebhookSecret
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// checkPermissions logs whether the bot can mint links in the channel.
// Startup continues either way; Issue rechecks on every request.
func (app *Application) checkPermissions(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	ok, err := app.links.HasInvitePermission(ctx)
	switch {
	case err != nil:
		app.logger.Error("could not check channel permissions", "channel_id", app.cfg.ChannelID, "error", err)
	case !ok:
		app.logger.Error("bot is not a channel admin with invite permission", "channel_id", app.cfg.ChannelID)
	default:
		app.logger.Info("bot has invite permission in channel", "channel_id", app.cfg.ChannelID)
	}
}
