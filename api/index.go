package handler

import (
	"context"
	"net/http"

	"github.com/juju/loggo"

	"github.com/wadjakorntonsri/studio-site/pkg/adapters/handler"
	"github.com/wadjakorntonsri/studio-site/pkg/adapters/media"
	"github.com/wadjakorntonsri/studio-site/pkg/adapters/repository/sqldb"
	"github.com/wadjakorntonsri/studio-site/pkg/config"
	"github.com/wadjakorntonsri/studio-site/pkg/core/notify"
	"github.com/wadjakorntonsri/studio-site/pkg/core/services"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	if err := loggo.ConfigureLoggers(cfg.LogConfig); err != nil {
		panic(err)
	}

	// Note: On Vercel, db.sqlite and the local media dir are ephemeral. Use a
	// Turso or Postgres DATABASE_URL and MEDIA_BACKEND=s3 there.
	repo, err := sqldb.NewRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}
	store, err := media.NewFromConfig(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	location, err := cfg.AnalyticsLocation()
	if err != nil {
		loggo.GetLogger("studio.server").Warningf("unknown ANALYTICS_TIMEZONE %q, using UTC", cfg.AnalyticsTimezone)
	}

	// Notifications only reach subscribers connected to the same instance.
	broker := notify.NewBroker()
	mux = handler.NewRouter(cfg, handler.Services{
		Analytics: services.NewAnalyticsService(repo, location),
		Content:   services.NewContentService(repo, store, broker),
		Media:     services.NewMediaService(store, cfg.MediaMaxBytes),
		Auth:      services.NewAuthService(repo),
		Broker:    broker,
	})
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
