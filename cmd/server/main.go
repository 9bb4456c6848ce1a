package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/loggo"

	"github.com/wadjakorntonsri/studio-site/pkg/adapters/handler"
	"github.com/wadjakorntonsri/studio-site/pkg/adapters/media"
	"github.com/wadjakorntonsri/studio-site/pkg/adapters/repository/sqldb"
	"github.com/wadjakorntonsri/studio-site/pkg/config"
	"github.com/wadjakorntonsri/studio-site/pkg/core/notify"
	"github.com/wadjakorntonsri/studio-site/pkg/core/services"
)

var logger = loggo.GetLogger("studio.server")

func main() {
	cfg := config.Load()
	if err := loggo.ConfigureLoggers(cfg.LogConfig); err != nil {
		logger.Warningf("invalid LOG_CONFIG %q: %v", cfg.LogConfig, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Repository
	repo, err := sqldb.NewRepository(cfg.DatabaseURL)
	if err != nil {
		logger.Criticalf("failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer repo.Close()

	store, err := media.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Criticalf("failed to open media store: %v", err)
		os.Exit(1)
	}

	location, err := cfg.AnalyticsLocation()
	if err != nil {
		logger.Warningf("unknown ANALYTICS_TIMEZONE %q, using UTC: %v", cfg.AnalyticsTimezone, err)
	}

	// Initialize Services
	broker := notify.NewBroker()
	router := handler.NewRouter(cfg, handler.Services{
		Analytics: services.NewAnalyticsService(repo, location),
		Content:   services.NewContentService(repo, store, broker),
		Media:     services.NewMediaService(store, cfg.MediaMaxBytes),
		Auth:      services.NewAuthService(repo),
		Broker:    broker,
	})

	// No WriteTimeout: the notification stream stays open.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
	}()

	logger.Infof("server starting on port %s (%s database, %s media)", cfg.Port, repo.Dialect(), cfg.MediaBackend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Criticalf("server: %v", err)
		os.Exit(1)
	}
	logger.Infof("server stopped")
}
