package handler

import (
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
	"github.com/wadjakorntonsri/studio-site/pkg/core/services"
	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

// Headers consulted, in order, for the visitor's address.
var forwardedHeaders = []string{"X-Forwarded-For", "X-Real-IP", "CF-Connecting-IP"}

type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

type visitRequest struct {
	PagePath string `json:"page_path"`
}

// visitContext derives the visitor metadata stored with a page view.
func visitContext(r *http.Request) domain.VisitContext {
	vc := domain.VisitContext{
		VisitorKey: domain.UnknownValue,
		UserAgent:  r.UserAgent(),
		Referrer:   r.Referer(),
	}
	for _, name := range forwardedHeaders {
		value := r.Header.Get(name)
		// X-Forwarded-For lists every hop; the first is the client.
		if first, _, _ := strings.Cut(value, ","); strings.TrimSpace(first) != "" {
			vc.VisitorKey = strings.TrimSpace(first)
			break
		}
	}
	if vc.UserAgent == "" {
		vc.UserAgent = domain.UnknownValue
	}
	if vc.Referrer == "" {
		vc.Referrer = domain.DirectReferrer
	}
	return vc
}

// RecordVisit handles POST /api/analytics/visit.
func (h *AnalyticsHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.RecordVisit(r.Context(), req.PagePath, visitContext(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetAnalytics handles GET /api/v1/analytics?range=N.
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	rangeDays := services.ParseRange(r.URL.Query().Get("range"))
	writeJSON(w, http.StatusOK, h.service.GetAnalytics(r.Context(), rangeDays))
}
