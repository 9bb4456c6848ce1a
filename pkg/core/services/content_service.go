package services

import (
	"context"
	"time"

	"github.com/juju/errors"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

const (
	homeFeaturedLimit = 6
	homeNewsLimit     = 3
	maxPageSize       = 100
)

type ContentService struct {
	repo     ports.ContentRepository
	media    ports.MediaStore
	notifier ports.Notifier
	now      func() time.Time
}

// NewContentService creates the content service. media and notifier may be nil.
func NewContentService(repo ports.ContentRepository, media ports.MediaStore, notifier ports.Notifier) *ContentService {
	return &ContentService{repo: repo, media: media, notifier: notifier, now: time.Now}
}

func (s *ContentService) notify(kind, title, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(domain.Notification{Kind: kind, Title: title, Message: message})
}

// releaseMedia removes stored objects that are no longer referenced.
// Failures are logged; the content change has already been committed.
func (s *ContentService) releaseMedia(ctx context.Context, urls ...string) {
	if s.media == nil {
		return
	}
	var paths []string
	for _, u := range urls {
		if path, ok := s.media.PathFromURL(u); ok {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return
	}
	if err := s.media.Remove(ctx, paths); err != nil {
		logger.Warningf("removing unreferenced media %v: %v", paths, err)
	}
}

// dropped returns the entries of before that are missing from after.
func dropped(before, after []string) []string {
	keep := make(map[string]bool, len(after))
	for _, a := range after {
		keep[a] = true
	}
	var out []string
	for _, b := range before {
		if b != "" && !keep[b] {
			out = append(out, b)
		}
	}
	return out
}

// --- Categories ---

func (s *ContentService) ListCategories(ctx context.Context, scope string) ([]domain.Category, error) {
	if scope != "" {
		if err := oneOf("scope", scope, domain.ScopeProject, domain.ScopeWork, domain.ScopeNews); err != nil {
			return nil, err
		}
	}
	categories, err := s.repo.ListCategories(ctx, scope)
	if err != nil {
		return nil, errors.Annotate(err, "listing categories")
	}
	return categories, nil
}

func (s *ContentService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, errors.Annotate(err, "getting category")
	}
	if category == nil {
		return nil, errors.NotFoundf("category %d", id)
	}
	return category, nil
}

func (s *ContentService) prepareCategory(ctx context.Context, id int64, in *domain.Category) error {
	if err := required("name", in.Name); err != nil {
		return err
	}
	if err := oneOf("scope", in.Scope, domain.ScopeProject, domain.ScopeWork, domain.ScopeNews); err != nil {
		return err
	}
	slug, err := resolveSlug(in.Slug, in.Name)
	if err != nil {
		return err
	}
	in.Slug = slug

	existing, err := s.repo.ListCategories(ctx, in.Scope)
	if err != nil {
		return errors.Annotate(err, "checking category slug")
	}
	for _, c := range existing {
		if c.Slug == slug && c.ID != id {
			return errors.AlreadyExistsf("category slug %q", slug)
		}
	}
	return nil
}

func (s *ContentService) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := s.prepareCategory(ctx, 0, category); err != nil {
		return nil, err
	}
	category.CreatedAt = s.now()

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, errors.Annotate(err, "creating category")
	}
	s.notify("success", "Category created", category.Name)
	return category, nil
}

func (s *ContentService) UpdateCategory(ctx context.Context, id int64, in *domain.Category) (*domain.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prepareCategory(ctx, id, in); err != nil {
		return nil, err
	}

	category.Name = in.Name
	category.Slug = in.Slug
	category.Scope = in.Scope
	category.SortOrder = in.SortOrder

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, errors.Annotate(err, "updating category")
	}
	s.notify("success", "Category updated", category.Name)
	return category, nil
}

func (s *ContentService) DeleteCategory(ctx context.Context, id int64) error {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return errors.Annotate(err, "deleting category")
	}
	s.notify("success", "Category deleted", category.Name)
	return nil
}

// --- Projects & works ---

func kindLabel(kind string) string {
	if kind == domain.KindWork {
		return "Work"
	}
	return "Project"
}

func validKind(kind string) error {
	return oneOf("kind", kind, domain.KindProject, domain.KindWork)
}

func (s *ContentService) ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error) {
	if filter.Kind != "" {
		if err := validKind(filter.Kind); err != nil {
			return nil, err
		}
	}
	projects, err := s.repo.ListProjects(ctx, filter)
	if err != nil {
		return nil, errors.Annotate(err, "listing projects")
	}
	return projects, nil
}

func (s *ContentService) GetProject(ctx context.Context, kind string, id int64) (*domain.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, errors.Annotatef(err, "getting %s", kind)
	}
	if project == nil || project.Kind != kind {
		return nil, errors.NotFoundf("%s %d", kind, id)
	}
	return project, nil
}

func (s *ContentService) GetProjectBySlug(ctx context.Context, kind, slug string) (*domain.Project, error) {
	project, err := s.repo.GetProjectBySlug(ctx, kind, slug)
	if err != nil {
		return nil, errors.Annotatef(err, "getting %s", kind)
	}
	if project == nil {
		return nil, errors.NotFoundf("%s %q", kind, slug)
	}
	return project, nil
}

func (s *ContentService) prepareProject(ctx context.Context, kind string, id int64, in *domain.Project) error {
	if err := validKind(kind); err != nil {
		return err
	}
	if err := required("title", in.Title); err != nil {
		return err
	}
	slug, err := resolveSlug(in.Slug, in.Title)
	if err != nil {
		return err
	}
	in.Slug = slug

	existing, err := s.repo.GetProjectBySlug(ctx, kind, slug)
	if err != nil {
		return errors.Annotate(err, "checking slug")
	}
	if existing != nil && existing.ID != id {
		return errors.AlreadyExistsf("%s slug %q", kind, slug)
	}

	if in.CategoryID != nil {
		category, err := s.repo.GetCategory(ctx, *in.CategoryID)
		if err != nil {
			return errors.Annotate(err, "checking category")
		}
		if category == nil {
			return errors.NotValidf("category %d", *in.CategoryID)
		}
	}
	if in.Gallery == nil {
		in.Gallery = []string{}
	}
	return nil
}

func (s *ContentService) CreateProject(ctx context.Context, kind string, project *domain.Project) (*domain.Project, error) {
	if err := s.prepareProject(ctx, kind, 0, project); err != nil {
		return nil, err
	}
	project.Kind = kind
	project.CreatedAt = s.now()
	project.UpdatedAt = project.CreatedAt

	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, errors.Annotatef(err, "creating %s", kind)
	}
	s.notify("success", kindLabel(kind)+" created", project.Title)
	return project, nil
}

func (s *ContentService) UpdateProject(ctx context.Context, kind string, id int64, in *domain.Project) (*domain.Project, error) {
	project, err := s.GetProject(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.prepareProject(ctx, kind, id, in); err != nil {
		return nil, err
	}

	before := append([]string{project.CoverImage}, project.Gallery...)

	project.CategoryID = in.CategoryID
	project.Title = in.Title
	project.Slug = in.Slug
	project.Summary = in.Summary
	project.Description = in.Description
	project.Location = in.Location
	project.Year = in.Year
	project.CoverImage = in.CoverImage
	project.Gallery = in.Gallery
	project.Featured = in.Featured
	project.Published = in.Published
	project.SortOrder = in.SortOrder
	project.UpdatedAt = s.now()

	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return nil, errors.Annotatef(err, "updating %s", kind)
	}
	s.releaseMedia(ctx, dropped(before, append([]string{project.CoverImage}, project.Gallery...))...)
	s.notify("success", kindLabel(kind)+" updated", project.Title)
	return project, nil
}

func (s *ContentService) DeleteProject(ctx context.Context, kind string, id int64) error {
	project, err := s.GetProject(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return errors.Annotatef(err, "deleting %s", kind)
	}
	s.releaseMedia(ctx, append([]string{project.CoverImage}, project.Gallery...)...)
	s.notify("success", kindLabel(kind)+" deleted", project.Title)
	return nil
}

// ListGallery collects the images of every published project and work,
// cover first, without repeating an image within one project.
func (s *ContentService) ListGallery(ctx context.Context) ([]domain.GalleryImage, error) {
	projects, err := s.repo.ListProjects(ctx, domain.ProjectFilter{PublishedOnly: true})
	if err != nil {
		return nil, errors.Annotate(err, "listing gallery")
	}

	images := []domain.GalleryImage{}
	for _, p := range projects {
		seen := map[string]bool{}
		for _, url := range append([]string{p.CoverImage}, p.Gallery...) {
			if url == "" || seen[url] {
				continue
			}
			seen[url] = true
			images = append(images, domain.GalleryImage{
				URL:          url,
				ProjectID:    p.ID,
				ProjectTitle: p.Title,
				ProjectSlug:  p.Slug,
				Kind:         p.Kind,
			})
		}
	}
	return images, nil
}

// --- Team ---

func (s *ContentService) ListTeamMembers(ctx context.Context, activeOnly bool) ([]domain.TeamMember, error) {
	members, err := s.repo.ListTeamMembers(ctx, activeOnly)
	if err != nil {
		return nil, errors.Annotate(err, "listing team")
	}
	return members, nil
}

func (s *ContentService) GetTeamMember(ctx context.Context, id int64) (*domain.TeamMember, error) {
	member, err := s.repo.GetTeamMember(ctx, id)
	if err != nil {
		return nil, errors.Annotate(err, "getting team member")
	}
	if member == nil {
		return nil, errors.NotFoundf("team member %d", id)
	}
	return member, nil
}

func validateTeamMember(in *domain.TeamMember) error {
	if err := required("name", in.Name); err != nil {
		return err
	}
	if in.Email != "" {
		return validEmail(in.Email)
	}
	return nil
}

func (s *ContentService) CreateTeamMember(ctx context.Context, member *domain.TeamMember) (*domain.TeamMember, error) {
	if err := validateTeamMember(member); err != nil {
		return nil, err
	}
	member.CreatedAt = s.now()
	member.UpdatedAt = member.CreatedAt

	if err := s.repo.CreateTeamMember(ctx, member); err != nil {
		return nil, errors.Annotate(err, "creating team member")
	}
	s.notify("success", "Team member added", member.Name)
	return member, nil
}

func (s *ContentService) UpdateTeamMember(ctx context.Context, id int64, in *domain.TeamMember) (*domain.TeamMember, error) {
	member, err := s.GetTeamMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateTeamMember(in); err != nil {
		return nil, err
	}

	oldPhoto := member.Photo
	member.Name = in.Name
	member.Role = in.Role
	member.Bio = in.Bio
	member.Photo = in.Photo
	member.Email = in.Email
	member.SortOrder = in.SortOrder
	member.Active = in.Active
	member.UpdatedAt = s.now()

	if err := s.repo.UpdateTeamMember(ctx, member); err != nil {
		return nil, errors.Annotate(err, "updating team member")
	}
	s.releaseMedia(ctx, dropped([]string{oldPhoto}, []string{member.Photo})...)
	s.notify("success", "Team member updated", member.Name)
	return member, nil
}

func (s *ContentService) DeleteTeamMember(ctx context.Context, id int64) error {
	member, err := s.GetTeamMember(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTeamMember(ctx, id); err != nil {
		return errors.Annotate(err, "deleting team member")
	}
	s.releaseMedia(ctx, member.Photo)
	s.notify("success", "Team member removed", member.Name)
	return nil
}

// --- Hero slides ---

func (s *ContentService) ListHeroSlides(ctx context.Context, activeOnly bool) ([]domain.HeroSlide, error) {
	slides, err := s.repo.ListHeroSlides(ctx, activeOnly)
	if err != nil {
		return nil, errors.Annotate(err, "listing hero slides")
	}
	return slides, nil
}

func (s *ContentService) GetHeroSlide(ctx context.Context, id int64) (*domain.HeroSlide, error) {
	slide, err := s.repo.GetHeroSlide(ctx, id)
	if err != nil {
		return nil, errors.Annotate(err, "getting hero slide")
	}
	if slide == nil {
		return nil, errors.NotFoundf("hero slide %d", id)
	}
	return slide, nil
}

func (s *ContentService) CreateHeroSlide(ctx context.Context, slide *domain.HeroSlide) (*domain.HeroSlide, error) {
	if err := required("image", slide.Image); err != nil {
		return nil, err
	}
	slide.CreatedAt = s.now()
	slide.UpdatedAt = slide.CreatedAt

	if err := s.repo.CreateHeroSlide(ctx, slide); err != nil {
		return nil, errors.Annotate(err, "creating hero slide")
	}
	s.notify("success", "Hero slide created", slide.Title)
	return slide, nil
}

func (s *ContentService) UpdateHeroSlide(ctx context.Context, id int64, in *domain.HeroSlide) (*domain.HeroSlide, error) {
	slide, err := s.GetHeroSlide(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := required("image", in.Image); err != nil {
		return nil, err
	}

	oldImage := slide.Image
	slide.Title = in.Title
	slide.Subtitle = in.Subtitle
	slide.Image = in.Image
	slide.LinkURL = in.LinkURL
	slide.SortOrder = in.SortOrder
	slide.Active = in.Active
	slide.UpdatedAt = s.now()

	if err := s.repo.UpdateHeroSlide(ctx, slide); err != nil {
		return nil, errors.Annotate(err, "updating hero slide")
	}
	s.releaseMedia(ctx, dropped([]string{oldImage}, []string{slide.Image})...)
	s.notify("success", "Hero slide updated", slide.Title)
	return slide, nil
}

func (s *ContentService) DeleteHeroSlide(ctx context.Context, id int64) error {
	slide, err := s.GetHeroSlide(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteHeroSlide(ctx, id); err != nil {
		return errors.Annotate(err, "deleting hero slide")
	}
	s.releaseMedia(ctx, slide.Image)
	s.notify("success", "Hero slide deleted", slide.Title)
	return nil
}

// --- News ---

func (s *ContentService) ListNews(ctx context.Context, publishedOnly bool, page, limit int) ([]domain.NewsArticle, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := (page - 1) * limit

	articles, err := s.repo.ListNews(ctx, publishedOnly, limit, offset)
	if err != nil {
		return nil, 0, errors.Annotate(err, "listing news")
	}

	count, err := s.repo.CountNews(ctx, publishedOnly)
	if err != nil {
		return nil, 0, errors.Annotate(err, "counting news")
	}
	return articles, count, nil
}

func (s *ContentService) GetNews(ctx context.Context, id int64) (*domain.NewsArticle, error) {
	article, err := s.repo.GetNews(ctx, id)
	if err != nil {
		return nil, errors.Annotate(err, "getting news article")
	}
	if article == nil {
		return nil, errors.NotFoundf("news article %d", id)
	}
	return article, nil
}

func (s *ContentService) GetNewsBySlug(ctx context.Context, slug string) (*domain.NewsArticle, error) {
	article, err := s.repo.GetNewsBySlug(ctx, slug)
	if err != nil {
		return nil, errors.Annotate(err, "getting news article")
	}
	if article == nil {
		return nil, errors.NotFoundf("news article %q", slug)
	}
	return article, nil
}

func (s *ContentService) prepareNews(ctx context.Context, id int64, in *domain.NewsArticle) error {
	if err := required("title", in.Title); err != nil {
		return err
	}
	slug, err := resolveSlug(in.Slug, in.Title)
	if err != nil {
		return err
	}
	in.Slug = slug

	existing, err := s.repo.GetNewsBySlug(ctx, slug)
	if err != nil {
		return errors.Annotate(err, "checking slug")
	}
	if existing != nil && existing.ID != id {
		return errors.AlreadyExistsf("news slug %q", slug)
	}
	return nil
}

// publicationDate keeps the first publication date and clears it for drafts.
func (s *ContentService) publicationDate(published bool, current, requested *time.Time) *time.Time {
	switch {
	case !published:
		return nil
	case requested != nil:
		return requested
	case current != nil:
		return current
	default:
		now := s.now()
		return &now
	}
}

func (s *ContentService) CreateNews(ctx context.Context, article *domain.NewsArticle) (*domain.NewsArticle, error) {
	if err := s.prepareNews(ctx, 0, article); err != nil {
		return nil, err
	}
	article.CreatedAt = s.now()
	article.UpdatedAt = article.CreatedAt
	article.PublishedAt = s.publicationDate(article.Published, nil, article.PublishedAt)

	if err := s.repo.CreateNews(ctx, article); err != nil {
		return nil, errors.Annotate(err, "creating news article")
	}
	s.notify("success", "News article created", article.Title)
	return article, nil
}

func (s *ContentService) UpdateNews(ctx context.Context, id int64, in *domain.NewsArticle) (*domain.NewsArticle, error) {
	article, err := s.GetNews(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prepareNews(ctx, id, in); err != nil {
		return nil, err
	}

	oldCover := article.CoverImage
	article.Title = in.Title
	article.Slug = in.Slug
	article.Excerpt = in.Excerpt
	article.Body = in.Body
	article.CoverImage = in.CoverImage
	article.PublishedAt = s.publicationDate(in.Published, article.PublishedAt, in.PublishedAt)
	article.Published = in.Published
	article.UpdatedAt = s.now()

	if err := s.repo.UpdateNews(ctx, article); err != nil {
		return nil, errors.Annotate(err, "updating news article")
	}
	s.releaseMedia(ctx, dropped([]string{oldCover}, []string{article.CoverImage})...)
	s.notify("success", "News article updated", article.Title)
	return article, nil
}

func (s *ContentService) DeleteNews(ctx context.Context, id int64) error {
	article, err := s.GetNews(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteNews(ctx, id); err != nil {
		return errors.Annotate(err, "deleting news article")
	}
	s.releaseMedia(ctx, article.CoverImage)
	s.notify("success", "News article deleted", article.Title)
	return nil
}

// --- Inquiries ---

func (s *ContentService) SubmitInquiry(ctx context.Context, inquiry *domain.Inquiry) (*domain.Inquiry, error) {
	if err := required("name", inquiry.Name); err != nil {
		return nil, err
	}
	if err := required("email", inquiry.Email); err != nil {
		return nil, err
	}
	if err := validEmail(inquiry.Email); err != nil {
		return nil, err
	}
	if err := required("message", inquiry.Message); err != nil {
		return nil, err
	}

	inquiry.ID = 0
	inquiry.Status = domain.InquiryNew
	inquiry.CreatedAt = s.now()

	if err := s.repo.CreateInquiry(ctx, inquiry); err != nil {
		return nil, errors.Annotate(err, "saving inquiry")
	}
	s.notify("info", "New collaboration inquiry", inquiry.Name+" <"+inquiry.Email+">")
	return inquiry, nil
}

func (s *ContentService) ListInquiries(ctx context.Context, status string) ([]domain.Inquiry, error) {
	if status != "" {
		if err := oneOf("status", status, domain.InquiryNew, domain.InquiryRead, domain.InquiryArchived); err != nil {
			return nil, err
		}
	}
	inquiries, err := s.repo.ListInquiries(ctx, status)
	if err != nil {
		return nil, errors.Annotate(err, "listing inquiries")
	}
	return inquiries, nil
}

func (s *ContentService) GetInquiry(ctx context.Context, id int64) (*domain.Inquiry, error) {
	inquiry, err := s.repo.GetInquiry(ctx, id)
	if err != nil {
		return nil, errors.Annotate(err, "getting inquiry")
	}
	if inquiry == nil {
		return nil, errors.NotFoundf("inquiry %d", id)
	}
	return inquiry, nil
}

func (s *ContentService) SetInquiryStatus(ctx context.Context, id int64, status string) (*domain.Inquiry, error) {
	if err := oneOf("status", status, domain.InquiryNew, domain.InquiryRead, domain.InquiryArchived); err != nil {
		return nil, err
	}
	inquiry, err := s.GetInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateInquiryStatus(ctx, id, status); err != nil {
		return nil, errors.Annotate(err, "updating inquiry")
	}
	inquiry.Status = status
	return inquiry, nil
}

func (s *ContentService) DeleteInquiry(ctx context.Context, id int64) error {
	if _, err := s.GetInquiry(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteInquiry(ctx, id); err != nil {
		return errors.Annotate(err, "deleting inquiry")
	}
	return nil
}

// --- Site sections ---

func (s *ContentService) ListSections(ctx context.Context) ([]domain.SiteSection, error) {
	sections, err := s.repo.ListSections(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "listing sections")
	}
	return sections, nil
}

func (s *ContentService) GetSection(ctx context.Context, key string) (*domain.SiteSection, error) {
	section, err := s.repo.GetSection(ctx, key)
	if err != nil {
		return nil, errors.Annotate(err, "getting section")
	}
	if section == nil {
		return nil, errors.NotFoundf("section %q", key)
	}
	return section, nil
}

func (s *ContentService) UpsertSection(ctx context.Context, key string, section *domain.SiteSection) (*domain.SiteSection, error) {
	if !slugPattern.MatchString(key) {
		return nil, errors.NotValidf("section key %q", key)
	}
	content, err := normalizeSectionContent(section.Content)
	if err != nil {
		return nil, err
	}

	section.Key = key
	section.Content = content
	section.UpdatedAt = s.now()

	if err := s.repo.UpsertSection(ctx, section); err != nil {
		return nil, errors.Annotate(err, "saving section")
	}
	s.notify("success", "Site settings saved", key)
	return section, nil
}

// GetHomePage gathers the landing page content.
func (s *ContentService) GetHomePage(ctx context.Context) (*domain.HomePage, error) {
	slides, err := s.ListHeroSlides(ctx, true)
	if err != nil {
		return nil, err
	}
	featured, err := s.ListProjects(ctx, domain.ProjectFilter{PublishedOnly: true, FeaturedOnly: true, Limit: homeFeaturedLimit})
	if err != nil {
		return nil, err
	}
	news, _, err := s.ListNews(ctx, true, 1, homeNewsLimit)
	if err != nil {
		return nil, err
	}
	sections, err := s.ListSections(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.HomePage{
		Slides:   orEmpty(slides),
		Featured: orEmpty(featured),
		News:     orEmpty(news),
		Sections: orEmpty(sections),
	}, nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
