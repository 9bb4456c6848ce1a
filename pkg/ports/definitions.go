package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
)

// AnalyticsRepository defines storage operations for page visits
type AnalyticsRepository interface {
	InsertVisit(ctx context.Context, visit *domain.VisitRecord) error
	// CountVisits counts visits observed at or after since. A zero since counts every row.
	CountVisits(ctx context.Context, since time.Time) (int64, error)
	// ListVisits returns visits in [from, to) ordered by observation time then id.
	ListVisits(ctx context.Context, from, to time.Time) ([]domain.VisitRecord, error)
	DeleteVisitsBefore(ctx context.Context, before time.Time) (int64, error)

	UpsertDailySummary(ctx context.Context, summary *domain.DailySummary) error
	ListDailySummaries(ctx context.Context, sinceDate string) ([]domain.DailySummary, error)
}

// ContentRepository defines storage operations for the site content tables.
// Getters return nil, nil when the row does not exist.
type ContentRepository interface {
	ListCategories(ctx context.Context, scope string) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error)
	GetProject(ctx context.Context, id int64) (*domain.Project, error)
	GetProjectBySlug(ctx context.Context, kind, slug string) (*domain.Project, error)
	CreateProject(ctx context.Context, project *domain.Project) error
	UpdateProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, id int64) error

	ListTeamMembers(ctx context.Context, activeOnly bool) ([]domain.TeamMember, error)
	GetTeamMember(ctx context.Context, id int64) (*domain.TeamMember, error)
	CreateTeamMember(ctx context.Context, member *domain.TeamMember) error
	UpdateTeamMember(ctx context.Context, member *domain.TeamMember) error
	DeleteTeamMember(ctx context.Context, id int64) error

	ListHeroSlides(ctx context.Context, activeOnly bool) ([]domain.HeroSlide, error)
	GetHeroSlide(ctx context.Context, id int64) (*domain.HeroSlide, error)
	CreateHeroSlide(ctx context.Context, slide *domain.HeroSlide) error
	UpdateHeroSlide(ctx context.Context, slide *domain.HeroSlide) error
	DeleteHeroSlide(ctx context.Context, id int64) error

	ListNews(ctx context.Context, publishedOnly bool, limit, offset int) ([]domain.NewsArticle, error)
	CountNews(ctx context.Context, publishedOnly bool) (int64, error)
	GetNews(ctx context.Context, id int64) (*domain.NewsArticle, error)
	GetNewsBySlug(ctx context.Context, slug string) (*domain.NewsArticle, error)
	CreateNews(ctx context.Context, article *domain.NewsArticle) error
	UpdateNews(ctx context.Context, article *domain.NewsArticle) error
	DeleteNews(ctx context.Context, id int64) error

	ListInquiries(ctx context.Context, status string) ([]domain.Inquiry, error)
	GetInquiry(ctx context.Context, id int64) (*domain.Inquiry, error)
	CreateInquiry(ctx context.Context, inquiry *domain.Inquiry) error
	UpdateInquiryStatus(ctx context.Context, id int64, status string) error
	DeleteInquiry(ctx context.Context, id int64) error

	ListSections(ctx context.Context) ([]domain.SiteSection, error)
	GetSection(ctx context.Context, key string) (*domain.SiteSection, error)
	UpsertSection(ctx context.Context, section *domain.SiteSection) error
}

// UserRepository stores admin accounts
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	CreateUser(ctx context.Context, user *domain.AdminUser) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// MediaStore is the file-object store uploaded images live in
type MediaStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
	Remove(ctx context.Context, paths []string) error
	// PathFromURL reverses PublicURL. ok is false for URLs the store does not own.
	PathFromURL(url string) (path string, ok bool)
}

// Notifier delivers admin notifications
type Notifier interface {
	Publish(n domain.Notification)
}

// AnalyticsService defines the visit analytics operations
type AnalyticsService interface {
	RecordVisit(ctx context.Context, pagePath string, vc domain.VisitContext) error
	GetAnalytics(ctx context.Context, rangeDays int) *domain.AnalyticsReport
	RebuildSummary(ctx context.Context, date time.Time) (*domain.DailySummary, error)
	PruneVisits(ctx context.Context, olderThanDays int) (int64, error)
}

// ContentService defines the business logic over site content
type ContentService interface {
	ListCategories(ctx context.Context, scope string) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error)
	GetProject(ctx context.Context, kind string, id int64) (*domain.Project, error)
	GetProjectBySlug(ctx context.Context, kind, slug string) (*domain.Project, error)
	CreateProject(ctx context.Context, kind string, project *domain.Project) (*domain.Project, error)
	UpdateProject(ctx context.Context, kind string, id int64, project *domain.Project) (*domain.Project, error)
	DeleteProject(ctx context.Context, kind string, id int64) error
	ListGallery(ctx context.Context) ([]domain.GalleryImage, error)

	ListTeamMembers(ctx context.Context, activeOnly bool) ([]domain.TeamMember, error)
	GetTeamMember(ctx context.Context, id int64) (*domain.TeamMember, error)
	CreateTeamMember(ctx context.Context, member *domain.TeamMember) (*domain.TeamMember, error)
	UpdateTeamMember(ctx context.Context, id int64, member *domain.TeamMember) (*domain.TeamMember, error)
	DeleteTeamMember(ctx context.Context, id int64) error

	ListHeroSlides(ctx context.Context, activeOnly bool) ([]domain.HeroSlide, error)
	GetHeroSlide(ctx context.Context, id int64) (*domain.HeroSlide, error)
	CreateHeroSlide(ctx context.Context, slide *domain.HeroSlide) (*domain.HeroSlide, error)
	UpdateHeroSlide(ctx context.Context, id int64, slide *domain.HeroSlide) (*domain.HeroSlide, error)
	DeleteHeroSlide(ctx context.Context, id int64) error

	ListNews(ctx context.Context, publishedOnly bool, page, limit int) ([]domain.NewsArticle, int64, error)
	GetNews(ctx context.Context, id int64) (*domain.NewsArticle, error)
	GetNewsBySlug(ctx context.Context, slug string) (*domain.NewsArticle, error)
	CreateNews(ctx context.Context, article *domain.NewsArticle) (*domain.NewsArticle, error)
	UpdateNews(ctx context.Context, id int64, article *domain.NewsArticle) (*domain.NewsArticle, error)
	DeleteNews(ctx context.Context, id int64) error

	SubmitInquiry(ctx context.Context, inquiry *domain.Inquiry) (*domain.Inquiry, error)
	ListInquiries(ctx context.Context, status string) ([]domain.Inquiry, error)
	GetInquiry(ctx context.Context, id int64) (*domain.Inquiry, error)
	SetInquiryStatus(ctx context.Context, id int64, status string) (*domain.Inquiry, error)
	DeleteInquiry(ctx context.Context, id int64) error

	ListSections(ctx context.Context) ([]domain.SiteSection, error)
	GetSection(ctx context.Context, key string) (*domain.SiteSection, error)
	UpsertSection(ctx context.Context, key string, section *domain.SiteSection) (*domain.SiteSection, error)

	GetHomePage(ctx context.Context) (*domain.HomePage, error)
}

// MediaService wraps the media store with validation
type MediaService interface {
	Upload(ctx context.Context, folder, filename, contentType string, data []byte) (*domain.MediaObject, error)
	PublicURL(path string) string
	Remove(ctx context.Context, paths []string) error
}

// AuthService is the password identity provider for the admin panel
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*domain.AdminUser, error)
	CreateAdmin(ctx context.Context, email, password string) (*domain.AdminUser, error)
	SetPassword(ctx context.Context, email, password string) error
}
