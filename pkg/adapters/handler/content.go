package handler

import (
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

type ContentHandler struct {
	service ports.ContentService
}

func NewContentHandler(service ports.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// reply writes v with status, or the error if there is one.
func reply(w http.ResponseWriter, r *http.Request, status int, v interface{}, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, v)
}

func replyDeleted(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// --- Public site ---

func (h *ContentHandler) Home(w http.ResponseWriter, r *http.Request) {
	home, err := h.service.GetHomePage(r.Context())
	reply(w, r, http.StatusOK, home, err)
}

func (h *ContentHandler) PublicProjects(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.service.ListProjects(r.Context(), domain.ProjectFilter{
			Kind:          kind,
			CategorySlug:  r.URL.Query().Get("category"),
			PublishedOnly: true,
			FeaturedOnly:  r.URL.Query().Get("featured") == "true",
			Limit:         queryInt(r, "limit"),
		})
		reply(w, r, http.StatusOK, projects, err)
	}
}

func (h *ContentHandler) PublicProject(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.service.GetProjectBySlug(r.Context(), kind, r.PathValue("slug"))
		if err == nil && !project.Published {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: kind + " not found"})
			return
		}
		reply(w, r, http.StatusOK, project, err)
	}
}

func (h *ContentHandler) PublicTeam(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListTeamMembers(r.Context(), true)
	reply(w, r, http.StatusOK, members, err)
}

func (h *ContentHandler) PublicNews(w http.ResponseWriter, r *http.Request) {
	h.listNews(w, r, true)
}

func (h *ContentHandler) PublicArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.GetNewsBySlug(r.Context(), r.PathValue("slug"))
	if err == nil && !article.Published {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "news article not found"})
		return
	}
	reply(w, r, http.StatusOK, article, err)
}

func (h *ContentHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListGallery(r.Context())
	reply(w, r, http.StatusOK, images, err)
}

func (h *ContentHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context(), r.URL.Query().Get("scope"))
	reply(w, r, http.StatusOK, categories, err)
}

func (h *ContentHandler) SubmitInquiry(w http.ResponseWriter, r *http.Request) {
	var inquiry domain.Inquiry
	if err := decodeJSON(w, r, &inquiry); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := h.service.SubmitInquiry(r.Context(), &inquiry)
	reply(w, r, http.StatusCreated, saved, err)
}

// --- Admin: projects & works ---

func (h *ContentHandler) ListProjects(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.service.ListProjects(r.Context(), domain.ProjectFilter{
			Kind:         kind,
			CategorySlug: r.URL.Query().Get("category"),
		})
		reply(w, r, http.StatusOK, projects, err)
	}
}

func (h *ContentHandler) GetProject(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		project, err := h.service.GetProject(r.Context(), kind, id)
		reply(w, r, http.StatusOK, project, err)
	}
}

func (h *ContentHandler) CreateProject(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var project domain.Project
		if err := decodeJSON(w, r, &project); err != nil {
			writeError(w, r, err)
			return
		}
		created, err := h.service.CreateProject(r.Context(), kind, &project)
		reply(w, r, http.StatusCreated, created, err)
	}
}

func (h *ContentHandler) UpdateProject(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var project domain.Project
		if err := decodeJSON(w, r, &project); err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := h.service.UpdateProject(r.Context(), kind, id, &project)
		reply(w, r, http.StatusOK, updated, err)
	}
}

func (h *ContentHandler) DeleteProject(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		replyDeleted(w, r, h.service.DeleteProject(r.Context(), kind, id))
	}
}

// --- Admin: categories ---

func (h *ContentHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := h.service.GetCategory(r.Context(), id)
	reply(w, r, http.StatusOK, category, err)
}

func (h *ContentHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := decodeJSON(w, r, &category); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.CreateCategory(r.Context(), &category)
	reply(w, r, http.StatusCreated, created, err)
}

func (h *ContentHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var category domain.Category
	if err := decodeJSON(w, r, &category); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.service.UpdateCategory(r.Context(), id, &category)
	reply(w, r, http.StatusOK, updated, err)
}

func (h *ContentHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	replyDeleted(w, r, h.service.DeleteCategory(r.Context(), id))
}

// --- Admin: team ---

func (h *ContentHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListTeamMembers(r.Context(), false)
	reply(w, r, http.StatusOK, members, err)
}

func (h *ContentHandler) GetTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	member, err := h.service.GetTeamMember(r.Context(), id)
	reply(w, r, http.StatusOK, member, err)
}

func (h *ContentHandler) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	var member domain.TeamMember
	if err := decodeJSON(w, r, &member); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.CreateTeamMember(r.Context(), &member)
	reply(w, r, http.StatusCreated, created, err)
}

func (h *ContentHandler) UpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var member domain.TeamMember
	if err := decodeJSON(w, r, &member); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.service.UpdateTeamMember(r.Context(), id, &member)
	reply(w, r, http.StatusOK, updated, err)
}

func (h *ContentHandler) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	replyDeleted(w, r, h.service.DeleteTeamMember(r.Context(), id))
}

// --- Admin: hero slides ---

func (h *ContentHandler) ListHeroSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.service.ListHeroSlides(r.Context(), false)
	reply(w, r, http.StatusOK, slides, err)
}

func (h *ContentHandler) GetHeroSlide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slide, err := h.service.GetHeroSlide(r.Context(), id)
	reply(w, r, http.StatusOK, slide, err)
}

func (h *ContentHandler) CreateHeroSlide(w http.ResponseWriter, r *http.Request) {
	var slide domain.HeroSlide
	if err := decodeJSON(w, r, &slide); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.CreateHeroSlide(r.Context(), &slide)
	reply(w, r, http.StatusCreated, created, err)
}

func (h *ContentHandler) UpdateHeroSlide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var slide domain.HeroSlide
	if err := decodeJSON(w, r, &slide); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.service.UpdateHeroSlide(r.Context(), id, &slide)
	reply(w, r, http.StatusOK, updated, err)
}

func (h *ContentHandler) DeleteHeroSlide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	replyDeleted(w, r, h.service.DeleteHeroSlide(r.Context(), id))
}

// --- Admin: news ---

func (h *ContentHandler) listNews(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	page := queryInt(r, "page")
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit")
	if limit < 1 {
		limit = 10
	}

	articles, total, err := h.service.ListNews(r.Context(), publishedOnly, page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  articles,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *ContentHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	h.listNews(w, r, false)
}

func (h *ContentHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	article, err := h.service.GetNews(r.Context(), id)
	reply(w, r, http.StatusOK, article, err)
}

func (h *ContentHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var article domain.NewsArticle
	if err := decodeJSON(w, r, &article); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.CreateNews(r.Context(), &article)
	reply(w, r, http.StatusCreated, created, err)
}

func (h *ContentHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var article domain.NewsArticle
	if err := decodeJSON(w, r, &article); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.service.UpdateNews(r.Context(), id, &article)
	reply(w, r, http.StatusOK, updated, err)
}

func (h *ContentHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	replyDeleted(w, r, h.service.DeleteNews(r.Context(), id))
}

// --- Admin: inquiries ---

type inquiryStatusRequest struct {
	Status string `json:"status"`
}

func (h *ContentHandler) ListInquiries(w http.ResponseWriter, r *http.Request) {
	inquiries, err := h.service.ListInquiries(r.Context(), r.URL.Query().Get("status"))
	reply(w, r, http.StatusOK, inquiries, err)
}

func (h *ContentHandler) GetInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	inquiry, err := h.service.GetInquiry(r.Context(), id)
	reply(w, r, http.StatusOK, inquiry, err)
}

func (h *ContentHandler) SetInquiryStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req inquiryStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inquiry, err := h.service.SetInquiryStatus(r.Context(), id, req.Status)
	reply(w, r, http.StatusOK, inquiry, err)
}

func (h *ContentHandler) DeleteInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	replyDeleted(w, r, h.service.DeleteInquiry(r.Context(), id))
}

// --- Admin: site sections ---

func (h *ContentHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.ListSections(r.Context())
	reply(w, r, http.StatusOK, sections, err)
}

func (h *ContentHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	section, err := h.service.GetSection(r.Context(), r.PathValue("key"))
	reply(w, r, http.StatusOK, section, err)
}

func (h *ContentHandler) UpsertSection(w http.ResponseWriter, r *http.Request) {
	var section domain.SiteSection
	if err := decodeJSON(w, r, &section); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := h.service.UpsertSection(r.Context(), r.PathValue("key"), &section)
	reply(w, r, http.StatusOK, saved, err)
}
