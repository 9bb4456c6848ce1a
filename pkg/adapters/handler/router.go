package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/studio-site/pkg/config"
	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

// Services are the application services the router dispatches to.
type Services struct {
	Analytics ports.AnalyticsService
	Content   ports.ContentService
	Media     ports.MediaService
	Auth      ports.AuthService
	Broker    Subscriber
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services) http.Handler {
	ah := NewAnalyticsHandler(svc.Analytics)
	ch := NewContentHandler(svc.Content)
	mh := NewMediaHandler(svc.Media, cfg.MediaMaxBytes)
	nh := NewNotificationHandler(svc.Broker)
	authHandler := NewAuthHandler(cfg, svc.Auth)
	mw := NewMiddleware(cfg)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("POST /api/analytics/visit", ah.RecordVisit)

	mux.HandleFunc("GET /api/public/home", ch.Home)
	mux.HandleFunc("GET /api/public/projects", ch.PublicProjects(domain.KindProject))
	mux.HandleFunc("GET /api/public/projects/{slug}", ch.PublicProject(domain.KindProject))
	mux.HandleFunc("GET /api/public/works", ch.PublicProjects(domain.KindWork))
	mux.HandleFunc("GET /api/public/works/{slug}", ch.PublicProject(domain.KindWork))
	mux.HandleFunc("GET /api/public/team", ch.PublicTeam)
	mux.HandleFunc("GET /api/public/news", ch.PublicNews)
	mux.HandleFunc("GET /api/public/news/{slug}", ch.PublicArticle)
	mux.HandleFunc("GET /api/public/gallery", ch.Gallery)
	mux.HandleFunc("GET /api/public/categories", ch.ListCategories)
	mux.HandleFunc("POST /api/public/inquiries", ch.SubmitInquiry)

	mux.HandleFunc("POST /auth/login", authHandler.PasswordLogin)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	if cfg.MediaBackend == "local" {
		mux.Handle("GET /media/", http.StripPrefix("/media/", localMedia(cfg.MediaDir)))
	}

	// Protected Routes (admin API)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/me", authHandler.Me)
	protectedMux.HandleFunc("GET /api/v1/analytics", ah.GetAnalytics)
	protectedMux.HandleFunc("GET /api/v1/notifications", nh.Stream)

	for prefix, kind := range map[string]string{"/api/v1/projects": domain.KindProject, "/api/v1/works": domain.KindWork} {
		protectedMux.HandleFunc("GET "+prefix, ch.ListProjects(kind))
		protectedMux.HandleFunc("POST "+prefix, ch.CreateProject(kind))
		protectedMux.HandleFunc("GET "+prefix+"/{id}", ch.GetProject(kind))
		protectedMux.HandleFunc("PUT "+prefix+"/{id}", ch.UpdateProject(kind))
		protectedMux.HandleFunc("DELETE "+prefix+"/{id}", ch.DeleteProject(kind))
	}

	protectedMux.HandleFunc("GET /api/v1/categories", ch.ListCategories)
	protectedMux.HandleFunc("POST /api/v1/categories", ch.CreateCategory)
	protectedMux.HandleFunc("GET /api/v1/categories/{id}", ch.GetCategory)
	protectedMux.HandleFunc("PUT /api/v1/categories/{id}", ch.UpdateCategory)
	protectedMux.HandleFunc("DELETE /api/v1/categories/{id}", ch.DeleteCategory)

	protectedMux.HandleFunc("GET /api/v1/team", ch.ListTeam)
	protectedMux.HandleFunc("POST /api/v1/team", ch.CreateTeamMember)
	protectedMux.HandleFunc("GET /api/v1/team/{id}", ch.GetTeamMember)
	protectedMux.HandleFunc("PUT /api/v1/team/{id}", ch.UpdateTeamMember)
	protectedMux.HandleFunc("DELETE /api/v1/team/{id}", ch.DeleteTeamMember)

	protectedMux.HandleFunc("GET /api/v1/hero-slides", ch.ListHeroSlides)
	protectedMux.HandleFunc("POST /api/v1/hero-slides", ch.CreateHeroSlide)
	protectedMux.HandleFunc("GET /api/v1/hero-slides/{id}", ch.GetHeroSlide)
	protectedMux.HandleFunc("PUT /api/v1/hero-slides/{id}", ch.UpdateHeroSlide)
	protectedMux.HandleFunc("DELETE /api/v1/hero-slides/{id}", ch.DeleteHeroSlide)

	protectedMux.HandleFunc("GET /api/v1/news", ch.ListNews)
	protectedMux.HandleFunc("POST /api/v1/news", ch.CreateNews)
	protectedMux.HandleFunc("GET /api/v1/news/{id}", ch.GetNews)
	protectedMux.HandleFunc("PUT /api/v1/news/{id}", ch.UpdateNews)
	protectedMux.HandleFunc("DELETE /api/v1/news/{id}", ch.DeleteNews)

	protectedMux.HandleFunc("GET /api/v1/inquiries", ch.ListInquiries)
	protectedMux.HandleFunc("GET /api/v1/inquiries/{id}", ch.GetInquiry)
	protectedMux.HandleFunc("PUT /api/v1/inquiries/{id}/status", ch.SetInquiryStatus)
	protectedMux.HandleFunc("DELETE /api/v1/inquiries/{id}", ch.DeleteInquiry)

	protectedMux.HandleFunc("GET /api/v1/sections", ch.ListSections)
	protectedMux.HandleFunc("GET /api/v1/sections/{key}", ch.GetSection)
	protectedMux.HandleFunc("PUT /api/v1/sections/{key}", ch.UpsertSection)

	protectedMux.HandleFunc("POST /api/v1/media", mh.Upload)
	protectedMux.HandleFunc("DELETE /api/v1/media", mh.Remove)

	// protectedMux holds full paths, so the prefix match dispatches straight through.
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	return mux
}
