package domain

import (
	"encoding/json"
	"time"
)

// Project kinds. Projects and works share one table.
const (
	KindProject = "project"
	KindWork    = "work"
)

// Category scopes
const (
	ScopeProject = "project"
	ScopeWork    = "work"
	ScopeNews    = "news"
)

// Inquiry statuses
const (
	InquiryNew      = "new"
	InquiryRead     = "read"
	InquiryArchived = "archived"
)

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Scope     string    `json:"scope"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is a portfolio entry, either a project or a work depending on Kind
type Project struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Year        int       `json:"year,omitempty"`
	CoverImage  string    `json:"cover_image"`
	Gallery     []string  `json:"gallery"` // Stored as JSON text
	Featured    bool      `json:"featured"`
	Published   bool      `json:"published"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TeamMember struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Bio       string    `json:"bio"`
	Photo     string    `json:"photo"`
	Email     string    `json:"email"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HeroSlide struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Image     string    `json:"image"`
	LinkURL   string    `json:"link_url"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewsArticle struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Body        string     `json:"body"`
	CoverImage  string     `json:"cover_image"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Inquiry is a collaboration request sent from the public form
type Inquiry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SiteSection is a keyed block of site configuration (about, contact, footer...)
type SiteSection struct {
	Key       string          `json:"key"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GalleryImage is one image shown on the public gallery page
type GalleryImage struct {
	URL          string `json:"url"`
	ProjectID    int64  `json:"project_id"`
	ProjectTitle string `json:"project_title"`
	ProjectSlug  string `json:"project_slug"`
	Kind         string `json:"kind"`
}

// HomePage bundles what the public landing page shows
type HomePage struct {
	Slides   []HeroSlide   `json:"hero_slides"`
	Featured []Project     `json:"featured_projects"`
	News     []NewsArticle `json:"latest_news"`
	Sections []SiteSection `json:"sections"`
}

// ContentDump is the import/export document used by the CLI
type ContentDump struct {
	Categories []Category    `json:"categories"`
	Projects   []Project     `json:"projects"`
	Team       []TeamMember  `json:"team"`
	HeroSlides []HeroSlide   `json:"hero_slides"`
	News       []NewsArticle `json:"news"`
	Sections   []SiteSection `json:"sections"`
}

// ProjectFilter narrows project listings
type ProjectFilter struct {
	Kind          string
	CategorySlug  string
	PublishedOnly bool
	FeaturedOnly  bool
	Limit         int
}
