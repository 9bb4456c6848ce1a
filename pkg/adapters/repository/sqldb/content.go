package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
)

// --- Categories ---

const categoryColumns = `id, name, slug, scope, sort_order, created_at`

func scanCategory(sc scanner) (*domain.Category, error) {
	var c domain.Category
	var createdAt dbTime
	if err := sc.Scan(&c.ID, &c.Name, &c.Slug, &c.Scope, &c.SortOrder, &createdAt); err != nil {
		return nil, err
	}
	c.CreatedAt = createdAt.Time
	return &c, nil
}

func (r *Repository) ListCategories(ctx context.Context, scope string) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	args := []interface{}{}

	if scope != "" {
		query += " WHERE scope = ?"
		args = append(args, scope)
	}
	query += " ORDER BY sort_order ASC, name ASC"

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := scanCategory(r.queryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	query := `INSERT INTO categories (name, slug, scope, sort_order, created_at) VALUES (?, ?, ?, ?, ?)`

	id, err := r.insert(ctx, query, category.Name, category.Slug, category.Scope, category.SortOrder, r.timeArg(category.CreatedAt))
	if err != nil {
		return err
	}
	category.ID = id
	return nil
}

func (r *Repository) UpdateCategory(ctx context.Context, category *domain.Category) error {
	query := `UPDATE categories SET name = ?, slug = ?, scope = ?, sort_order = ? WHERE id = ?`
	_, err := r.exec(ctx, query, category.Name, category.Slug, category.Scope, category.SortOrder, category.ID)
	return err
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	// Projects keep existing without a category.
	if _, err := r.exec(ctx, `UPDATE projects SET category_id = NULL WHERE category_id = ?`, id); err != nil {
		return err
	}
	_, err := r.exec(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

// --- Projects & works ---

const projectColumns = `p.id, p.kind, p.category_id, p.title, p.slug, p.summary, p.description, p.location, p.year,
	p.cover_image, p.gallery, p.featured, p.published, p.sort_order, p.created_at, p.updated_at`

func scanProject(sc scanner) (*domain.Project, error) {
	var p domain.Project
	var categoryID sql.NullInt64
	var gallery string
	var createdAt, updatedAt dbTime

	err := sc.Scan(
		&p.ID, &p.Kind, &categoryID, &p.Title, &p.Slug, &p.Summary, &p.Description, &p.Location, &p.Year,
		&p.CoverImage, &gallery, &p.Featured, &p.Published, &p.SortOrder, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	p.Gallery = unmarshalStrings(gallery)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

func (r *Repository) ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + `
			  FROM projects p
			  LEFT JOIN categories c ON c.id = p.category_id
			  WHERE 1 = 1`
	args := []interface{}{}

	if filter.Kind != "" {
		query += " AND p.kind = ?"
		args = append(args, filter.Kind)
	}
	if filter.CategorySlug != "" {
		query += " AND c.slug = ?"
		args = append(args, filter.CategorySlug)
	}
	if filter.PublishedOnly {
		query += " AND p.published = ?"
		args = append(args, true)
	}
	if filter.FeaturedOnly {
		query += " AND p.featured = ?"
		args = append(args, true)
	}

	query += " ORDER BY p.sort_order ASC, p.created_at DESC, p.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *Repository) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	p, err := scanProject(r.queryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *Repository) GetProjectBySlug(ctx context.Context, kind, slug string) (*domain.Project, error) {
	p, err := scanProject(r.queryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.kind = ? AND p.slug = ?`, kind, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *Repository) CreateProject(ctx context.Context, project *domain.Project) error {
	query := `INSERT INTO projects (kind, category_id, title, slug, summary, description, location, year,
				cover_image, gallery, featured, published, sort_order, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	gallery, err := marshalStrings(project.Gallery)
	if err != nil {
		return err
	}

	id, err := r.insert(ctx, query,
		project.Kind, project.CategoryID, project.Title, project.Slug, project.Summary, project.Description,
		project.Location, project.Year, project.CoverImage, gallery, project.Featured, project.Published,
		project.SortOrder, r.timeArg(project.CreatedAt), r.timeArg(project.UpdatedAt),
	)
	if err != nil {
		return err
	}
	project.ID = id
	return nil
}

func (r *Repository) UpdateProject(ctx context.Context, project *domain.Project) error {
	query := `UPDATE projects SET category_id = ?, title = ?, slug = ?, summary = ?, description = ?, location = ?,
				year = ?, cover_image = ?, gallery = ?, featured = ?, published = ?, sort_order = ?, updated_at = ?
			  WHERE id = ?`

	gallery, err := marshalStrings(project.Gallery)
	if err != nil {
		return err
	}

	_, err = r.exec(ctx, query,
		project.CategoryID, project.Title, project.Slug, project.Summary, project.Description, project.Location,
		project.Year, project.CoverImage, gallery, project.Featured, project.Published, project.SortOrder,
		r.timeArg(project.UpdatedAt), project.ID,
	)
	return err
}

func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

// --- Team ---

const teamColumns = `id, name, role, bio, photo, email, sort_order, active, created_at, updated_at`

func scanTeamMember(sc scanner) (*domain.TeamMember, error) {
	var m domain.TeamMember
	var createdAt, updatedAt dbTime
	err := sc.Scan(&m.ID, &m.Name, &m.Role, &m.Bio, &m.Photo, &m.Email, &m.SortOrder, &m.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = createdAt.Time
	m.UpdatedAt = updatedAt.Time
	return &m, nil
}

func (r *Repository) ListTeamMembers(ctx context.Context, activeOnly bool) ([]domain.TeamMember, error) {
	query := `SELECT ` + teamColumns + ` FROM team_members`
	args := []interface{}{}

	if activeOnly {
		query += " WHERE active = ?"
		args = append(args, true)
	}
	query += " ORDER BY sort_order ASC, id ASC"

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []domain.TeamMember{}
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (r *Repository) GetTeamMember(ctx context.Context, id int64) (*domain.TeamMember, error) {
	m, err := scanTeamMember(r.queryRow(ctx, `SELECT `+teamColumns+` FROM team_members WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *Repository) CreateTeamMember(ctx context.Context, member *domain.TeamMember) error {
	query := `INSERT INTO team_members (name, role, bio, photo, email, sort_order, active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := r.insert(ctx, query, member.Name, member.Role, member.Bio, member.Photo, member.Email,
		member.SortOrder, member.Active, r.timeArg(member.CreatedAt), r.timeArg(member.UpdatedAt))
	if err != nil {
		return err
	}
	member.ID = id
	return nil
}

func (r *Repository) UpdateTeamMember(ctx context.Context, member *domain.TeamMember) error {
	query := `UPDATE team_members SET name = ?, role = ?, bio = ?, photo = ?, email = ?, sort_order = ?, active = ?, updated_at = ?
			  WHERE id = ?`
	_, err := r.exec(ctx, query, member.Name, member.Role, member.Bio, member.Photo, member.Email,
		member.SortOrder, member.Active, r.timeArg(member.UpdatedAt), member.ID)
	return err
}

func (r *Repository) DeleteTeamMember(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, `DELETE FROM team_members WHERE id = ?`, id)
	return err
}

// --- Hero slides ---

const heroColumns = `id, title, subtitle, image, link_url, sort_order, active, created_at, updated_at`

func scanHeroSlide(sc scanner) (*domain.HeroSlide, error) {
	var h domain.HeroSlide
	var createdAt, updatedAt dbTime
	err := sc.Scan(&h.ID, &h.Title, &h.Subtitle, &h.Image, &h.LinkURL, &h.SortOrder, &h.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	h.CreatedAt = createdAt.Time
	h.UpdatedAt = updatedAt.Time
	return &h, nil
}

func (r *Repository) ListHeroSlides(ctx context.Context, activeOnly bool) ([]domain.HeroSlide, error) {
	query := `SELECT ` + heroColumns + ` FROM hero_slides`
	args := []interface{}{}

	if activeOnly {
		query += " WHERE active = ?"
		args = append(args, true)
	}
	query += " ORDER BY sort_order ASC, id ASC"

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slides := []domain.HeroSlide{}
	for rows.Next() {
		h, err := scanHeroSlide(rows)
		if err != nil {
			return nil, err
		}
		slides = append(slides, *h)
	}
	return slides, rows.Err()
}

func (r *Repository) GetHeroSlide(ctx context.Context, id int64) (*domain.HeroSlide, error) {
	h, err := scanHeroSlide(r.queryRow(ctx, `SELECT `+heroColumns+` FROM hero_slides WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return h, err
}

func (r *Repository) CreateHeroSlide(ctx context.Context, slide *domain.HeroSlide) error {
	query := `INSERT INTO hero_slides (title, subtitle, image, link_url, sort_order, active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := r.insert(ctx, query, slide.Title, slide.Subtitle, slide.Image, slide.LinkURL, slide.SortOrder,
		slide.Active, r.timeArg(slide.CreatedAt), r.timeArg(slide.UpdatedAt))
	if err != nil {
		return err
	}
	slide.ID = id
	return nil
}

func (r *Repository) UpdateHeroSlide(ctx context.Context, slide *domain.HeroSlide) error {
	query := `UPDATE hero_slides SET title = ?, subtitle = ?, image = ?, link_url = ?, sort_order = ?, active = ?, updated_at = ?
			  WHERE id = ?`
	_, err := r.exec(ctx, query, slide.Title, slide.Subtitle, slide.Image, slide.LinkURL, slide.SortOrder,
		slide.Active, r.timeArg(slide.UpdatedAt), slide.ID)
	return err
}

func (r *Repository) DeleteHeroSlide(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, `DELETE FROM hero_slides WHERE id = ?`, id)
	return err
}

// --- News ---

const newsColumns = `id, title, slug, excerpt, body, cover_image, published, published_at, created_at, updated_at`

func scanNews(sc scanner) (*domain.NewsArticle, error) {
	var n domain.NewsArticle
	var publishedAt, createdAt, updatedAt dbTime
	err := sc.Scan(&n.ID, &n.Title, &n.Slug, &n.Excerpt, &n.Body, &n.CoverImage, &n.Published, &publishedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	n.PublishedAt = publishedAt.ptr()
	n.CreatedAt = createdAt.Time
	n.UpdatedAt = updatedAt.Time
	return &n, nil
}

func (r *Repository) ListNews(ctx context.Context, publishedOnly bool, limit, offset int) ([]domain.NewsArticle, error) {
	query := `SELECT ` + newsColumns + ` FROM news_articles`
	args := []interface{}{}

	if publishedOnly {
		query += " WHERE published = ?"
		args = append(args, true)
	}
	query += " ORDER BY COALESCE(published_at, created_at) DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []domain.NewsArticle{}
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *n)
	}
	return articles, rows.Err()
}

func (r *Repository) CountNews(ctx context.Context, publishedOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM news_articles`
	args := []interface{}{}

	if publishedOnly {
		query += " WHERE published = ?"
		args = append(args, true)
	}

	var count int64
	err := r.queryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *Repository) GetNews(ctx context.Context, id int64) (*domain.NewsArticle, error) {
	n, err := scanNews(r.queryRow(ctx, `SELECT `+newsColumns+` FROM news_articles WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func (r *Repository) GetNewsBySlug(ctx context.Context, slug string) (*domain.NewsArticle, error) {
	n, err := scanNews(r.queryRow(ctx, `SELECT `+newsColumns+` FROM news_articles WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func (r *Repository) CreateNews(ctx context.Context, article *domain.NewsArticle) error {
	query := `INSERT INTO news_articles (title, slug, excerpt, body, cover_image, published, published_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := r.insert(ctx, query, article.Title, article.Slug, article.Excerpt, article.Body, article.CoverImage,
		article.Published, r.nullTimeArg(article.PublishedAt), r.timeArg(article.CreatedAt), r.timeArg(article.UpdatedAt))
	if err != nil {
		return err
	}
	article.ID = id
	return nil
}

func (r *Repository) UpdateNews(ctx context.Context, article *domain.NewsArticle) error {
	query := `UPDATE news_articles SET title = ?, slug = ?, excerpt = ?, body = ?, cover_image = ?, published = ?,
				published_at = ?, updated_at = ?
			  WHERE id = ?`
	_, err := r.exec(ctx, query, article.Title, article.Slug, article.Excerpt, article.Body, article.CoverImage,
		article.Published, r.nullTimeArg(article.PublishedAt), r.timeArg(article.UpdatedAt), article.ID)
	return err
}

func (r *Repository) DeleteNews(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, `DELETE FROM news_articles WHERE id = ?`, id)
	return err
}

// --- Inquiries ---

const inquiryColumns = `id, name, email, phone, company, subject, message, status, created_at`

func scanInquiry(sc scanner) (*domain.Inquiry, error) {
	var i domain.Inquiry
	var createdAt dbTime
	err := sc.Scan(&i.ID, &i.Name, &i.Email, &i.Phone, &i.Company, &i.Subject, &i.Message, &i.Status, &createdAt)
	if err != nil {
		return nil, err
	}
	i.CreatedAt = createdAt.Time
	return &i, nil
}

func (r *Repository) ListInquiries(ctx context.Context, status string) ([]domain.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries`
	args := []interface{}{}

	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inquiries := []domain.Inquiry{}
	for rows.Next() {
		i, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, *i)
	}
	return inquiries, rows.Err()
}

func (r *Repository) GetInquiry(ctx context.Context, id int64) (*domain.Inquiry, error) {
	i, err := scanInquiry(r.queryRow(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return i, err
}

func (r *Repository) CreateInquiry(ctx context.Context, inquiry *domain.Inquiry) error {
	query := `INSERT INTO inquiries (name, email, phone, company, subject, message, status, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := r.insert(ctx, query, inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.Company, inquiry.Subject,
		inquiry.Message, inquiry.Status, r.timeArg(inquiry.CreatedAt))
	if err != nil {
		return err
	}
	inquiry.ID = id
	return nil
}

func (r *Repository) UpdateInquiryStatus(ctx context.Context, id int64, status string) error {
	_, err := r.exec(ctx, `UPDATE inquiries SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *Repository) DeleteInquiry(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, `DELETE FROM inquiries WHERE id = ?`, id)
	return err
}

// --- Site sections ---

const sectionColumns = `section_key, title, content, updated_at`

func scanSection(sc scanner) (*domain.SiteSection, error) {
	var s domain.SiteSection
	var content string
	var updatedAt dbTime
	if err := sc.Scan(&s.Key, &s.Title, &content, &updatedAt); err != nil {
		return nil, err
	}
	s.Content = json.RawMessage(content)
	s.UpdatedAt = updatedAt.Time
	return &s, nil
}

func (r *Repository) ListSections(ctx context.Context) ([]domain.SiteSection, error) {
	rows, err := r.query(ctx, `SELECT `+sectionColumns+` FROM site_sections ORDER BY section_key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []domain.SiteSection{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *s)
	}
	return sections, rows.Err()
}

func (r *Repository) GetSection(ctx context.Context, key string) (*domain.SiteSection, error) {
	s, err := scanSection(r.queryRow(ctx, `SELECT `+sectionColumns+` FROM site_sections WHERE section_key = ?`, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *Repository) UpsertSection(ctx context.Context, section *domain.SiteSection) error {
	query := `INSERT INTO site_sections (section_key, title, content, updated_at)
			  VALUES (?, ?, ?, ?)
			  ON CONFLICT(section_key) DO UPDATE SET
				title = excluded.title,
				content = excluded.content,
				updated_at = excluded.updated_at`

	content := string(section.Content)
	if content == "" {
		content = "{}"
	}
	_, err := r.exec(ctx, query, section.Key, section.Title, content, r.timeArg(section.UpdatedAt))
	return err
}
