package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/app"
	"github.com/vince123890/website-kasir/internal/auth"
	"github.com/vince123890/website-kasir/internal/guard"
	"github.com/vince123890/website-kasir/internal/i18n"
	"github.com/vince123890/website-kasir/internal/menu"
	"github.com/vince123890/website-kasir/internal/observability"
	"github.com/vince123890/website-kasir/internal/platform/cache"
	"github.com/vince123890/website-kasir/internal/platform/db"
	"github.com/vince123890/website-kasir/internal/pos"
	"github.com/vince123890/website-kasir/internal/route"
	"github.com/vince123890/website-kasir/internal/shared"
	"github.com/vince123890/website-kasir/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	trees, err := loadMenus(cfg, logger)
	if err != nil {
		logger.Error("load menus", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "kasir_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()
	messages := i18n.NewPrinter(cfg.AppLocale)
	routes := route.NewRegistry(route.Paths)

	navigation := menu.NewEngine(trees, menu.DefaultCounters(dbpool), routes, logger).WithRecorder(metrics)
	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	templates.WithNavigation(navigation)

	gate := &guard.Guard{
		Logger:        logger,
		Messages:      messages,
		Recorder:      metrics,
		Routes:        routes,
		WarningWindow: cfg.PasswordWarningWindow,
		LoginRoute:    route.Login,
	}

	authService := auth.NewService(auth.NewRepository(dbpool), cfg.PasswordLifetime)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, messages, routes)
	posHandler := pos.NewHandler(logger, pos.NewRepository(dbpool), gate)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Identities:     access.NewPGIdentityStore(dbpool),
		Guard:          gate,
		AuthHandler:    authHandler,
		POSHandler:     posHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func loadMenus(cfg *app.Config, logger *slog.Logger) (menu.Trees, error) {
	if cfg.MenuFile == "" {
		return menu.LoadDefault(logger)
	}
	data, err := os.ReadFile(cfg.MenuFile)
	if err != nil {
		return nil, err
	}
	return menu.Load(data, logger)
}
