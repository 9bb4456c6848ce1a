package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/studio-site/pkg/adapters/repository/sqldb"
	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
)

const testMediaPrefix = "https://cdn.studio.example/media/"

type fakeMedia struct {
	mu       sync.Mutex
	objects  map[string][]byte
	removed  []string
	failNext error
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: map[string][]byte{}}
}

func (f *fakeMedia) Upload(_ context.Context, path string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.objects[path] = data
	return nil
}

func (f *fakeMedia) PublicURL(path string) string { return testMediaPrefix + path }

func (f *fakeMedia) Remove(_ context.Context, paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	for _, p := range paths {
		delete(f.objects, p)
	}
	f.removed = append(f.removed, paths...)
	return nil
}

func (f *fakeMedia) PathFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, testMediaPrefix) {
		return "", false
	}
	return strings.TrimPrefix(url, testMediaPrefix), true
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (r *recordingNotifier) Publish(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.items {
		out = append(out, n.Title)
	}
	return out
}

type contentFixture struct {
	svc      *ContentService
	media    *fakeMedia
	notifier *recordingNotifier
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()
	repo, err := sqldb.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	f := &contentFixture{media: newFakeMedia(), notifier: &recordingNotifier{}}
	f.svc = NewContentService(repo, f.media, f.notifier)
	f.svc.now = fixedClock(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	return f
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "casa-arbol-lisbon", Slugify("Casa Árbol, Lisbon"))
	assert.Equal(t, "the-glass-pavilion", Slugify("  The Glass  Pavilion! "))
	assert.Equal(t, "2024-retrospective", Slugify("2024 / Retrospective"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestCreateProject_DerivesSlugAndRejectsDuplicates(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProject(ctx, domain.KindProject, &domain.Project{Title: "Hill House", Published: true})
	require.NoError(t, err)
	assert.Equal(t, "hill-house", created.Slug)
	assert.Equal(t, domain.KindProject, created.Kind)
	assert.Equal(t, []string{}, created.Gallery)
	assert.NotZero(t, created.ID)

	_, err = f.svc.CreateProject(ctx, domain.KindProject, &domain.Project{Title: "Hill House"})
	assert.True(t, errors.Is(err, errors.AlreadyExists))

	// Works have their own slug namespace.
	work, err := f.svc.CreateProject(ctx, domain.KindWork, &domain.Project{Title: "Hill House"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindWork, work.Kind)

	assert.Equal(t, []string{"Project created", "Work created"}, f.notifier.titles())
}

func TestCreateProject_Validation(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProject(ctx, domain.KindProject, &domain.Project{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Equal(t, "title is required", err.Error())

	_, err = f.svc.CreateProject(ctx, domain.KindProject, &domain.Project{Title: "X", Slug: "Not A Slug"})
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = f.svc.CreateProject(ctx, "sculpture", &domain.Project{Title: "X"})
	assert.True(t, errors.Is(err, errors.NotValid))

	missing := int64(42)
	_, err = f.svc.CreateProject(ctx, domain.KindProject, &domain.Project{Title: "X", CategoryID: &missing})
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestGetProject_KindMismatchIsNotFound(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	work, err := f.svc.CreateProject(ctx, domain.KindWork, &domain.Project{Title: "Lamp"})
	require.NoError(t, err)

	_, err = f.svc.GetProject(ctx, domain.KindProject, work.ID)
	assert.True(t, errors.Is(err, errors.NotFound))

	_, err = f.svc.GetProjectBySlug(ctx, domain.KindWork, "missing")
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestUpdateProject_ReleasesReplacedImages(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProject(ctx, domain.KindProject, &domain.Project{
		Title:      "Courtyard",
		CoverImage: testMediaPrefix + "projects/cover.jpg",
		Gallery:    []string{testMediaPrefix + "projects/a.jpg", testMediaPrefix + "projects/b.jpg", "https://elsewhere.example/c.jpg"},
	})
	require.NoError(t, err)
	createdAt := created.CreatedAt

	updated, err := f.svc.UpdateProject(ctx, domain.KindProject, created.ID, &domain.Project{
		Title:      "Courtyard Residence",
		Slug:       "courtyard",
		CoverImage: testMediaPrefix + "projects/cover.jpg",
		Gallery:    []string{testMediaPrefix + "projects/b.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Courtyard Residence", updated.Title)
	assert.Equal(t, createdAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(createdAt))
	assert.Equal(t, []string{"projects/a.jpg"}, f.media.removed)

	require.NoError(t, f.svc.DeleteProject(ctx, domain.KindProject, created.ID))
	assert.ElementsMatch(t, []string{"projects/a.jpg", "projects/cover.jpg", "projects/b.jpg"}, f.media.removed)

	_, err = f.svc.GetProject(ctx, domain.KindProject, created.ID)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestDeleteProject_MediaFailureIsNotFatal(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProject(ctx, domain.KindWork, &domain.Project{Title: "Vase", CoverImage: testMediaPrefix + "works/vase.jpg"})
	require.NoError(t, err)

	f.media.failNext = errors.New("bucket unavailable")
	require.NoError(t, f.svc.DeleteProject(ctx, domain.KindWork, created.ID))
}

func TestListGallery(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProject(ctx, domain.KindProject, &domain.Project{
		Title: "Atrium", Published: true, CoverImage: "/img/1.jpg", Gallery: []string{"/img/1.jpg", "/img/2.jpg"},
	})
	require.NoError(t, err)
	_, err = f.svc.CreateProject(ctx, domain.KindWork, &domain.Project{Title: "Hidden", CoverImage: "/img/3.jpg"})
	require.NoError(t, err)

	images, err := f.svc.ListGallery(ctx)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "/img/1.jpg", images[0].URL)
	assert.Equal(t, "atrium", images[0].ProjectSlug)
	assert.Equal(t, "/img/2.jpg", images[1].URL)
}

func TestCategories(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	cat, err := f.svc.CreateCategory(ctx, &domain.Category{Name: "Interior Design", Scope: domain.ScopeProject})
	require.NoError(t, err)
	assert.Equal(t, "interior-design", cat.Slug)

	_, err = f.svc.CreateCategory(ctx, &domain.Category{Name: "Interior design", Scope: domain.ScopeProject})
	assert.True(t, errors.Is(err, errors.AlreadyExists))

	_, err = f.svc.CreateCategory(ctx, &domain.Category{Name: "Interior design", Scope: domain.ScopeNews})
	require.NoError(t, err)

	_, err = f.svc.CreateCategory(ctx, &domain.Category{Name: "Landscape", Scope: "garden"})
	assert.True(t, errors.Is(err, errors.NotValid))

	updated, err := f.svc.UpdateCategory(ctx, cat.ID, &domain.Category{Name: "Interiors", Slug: "interior-design", Scope: domain.ScopeProject, SortOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, "Interiors", updated.Name)
	assert.Equal(t, 2, updated.SortOrder)

	list, err := f.svc.ListCategories(ctx, domain.ScopeProject)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.DeleteCategory(ctx, cat.ID))
	assert.True(t, errors.Is(f.svc.DeleteCategory(ctx, cat.ID), errors.NotFound))
}

func TestNews_PublicationDate(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	draft, err := f.svc.CreateNews(ctx, &domain.NewsArticle{Title: "Studio opens in Porto"})
	require.NoError(t, err)
	assert.Nil(t, draft.PublishedAt)

	published, err := f.svc.UpdateNews(ctx, draft.ID, &domain.NewsArticle{Title: "Studio opens in Porto", Published: true})
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	firstPublished := *published.PublishedAt

	again, err := f.svc.UpdateNews(ctx, draft.ID, &domain.NewsArticle{Title: "Studio opens in Porto", Body: "Edited", Published: true})
	require.NoError(t, err)
	require.NotNil(t, again.PublishedAt)
	assert.Equal(t, firstPublished, *again.PublishedAt)

	unpublished, err := f.svc.UpdateNews(ctx, draft.ID, &domain.NewsArticle{Title: "Studio opens in Porto"})
	require.NoError(t, err)
	assert.Nil(t, unpublished.PublishedAt)

	bySlug, err := f.svc.GetNewsBySlug(ctx, "studio-opens-in-porto")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, bySlug.ID)
}

func TestListNews_Pagination(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := f.svc.CreateNews(ctx, &domain.NewsArticle{Title: title, Published: true})
		require.NoError(t, err)
	}
	_, err := f.svc.CreateNews(ctx, &domain.NewsArticle{Title: "Draft"})
	require.NoError(t, err)

	page, total, err := f.svc.ListNews(ctx, true, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "one", page[0].Slug)

	all, total, err := f.svc.ListNews(ctx, false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)
}

func TestSubmitInquiry(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitInquiry(ctx, &domain.Inquiry{Name: "Ana", Email: "not-an-email", Message: "Hi"})
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = f.svc.SubmitInquiry(ctx, &domain.Inquiry{Name: "Ana", Email: "ana@example.com"})
	assert.True(t, errors.Is(err, errors.NotValid))

	inquiry, err := f.svc.SubmitInquiry(ctx, &domain.Inquiry{
		Name: "Ana", Email: "ana@example.com", Message: "We would like to collaborate", Status: domain.InquiryArchived,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryNew, inquiry.Status)
	assert.Equal(t, []string{"New collaboration inquiry"}, f.notifier.titles())

	read, err := f.svc.SetInquiryStatus(ctx, inquiry.ID, domain.InquiryRead)
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryRead, read.Status)

	_, err = f.svc.SetInquiryStatus(ctx, inquiry.ID, "spam")
	assert.True(t, errors.Is(err, errors.NotValid))

	list, err := f.svc.ListInquiries(ctx, domain.InquiryRead)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.DeleteInquiry(ctx, inquiry.ID))
	_, err = f.svc.GetInquiry(ctx, inquiry.ID)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestSections(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpsertSection(ctx, "contact", &domain.SiteSection{Content: json.RawMessage(`["not", "an", "object"]`)})
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = f.svc.UpsertSection(ctx, "Bad Key", &domain.SiteSection{})
	assert.True(t, errors.Is(err, errors.NotValid))

	saved, err := f.svc.UpsertSection(ctx, "contact", &domain.SiteSection{Title: "Contact", Content: json.RawMessage(`{"email":"hello@studio.example"}`)})
	require.NoError(t, err)
	assert.Equal(t, "contact", saved.Key)

	got, err := f.svc.GetSection(ctx, "contact")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"hello@studio.example"}`, string(got.Content))

	_, err = f.svc.GetSection(ctx, "footer")
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestTeamAndSlides(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTeamMember(ctx, &domain.TeamMember{Name: "Rui", Email: "rui@"})
	assert.True(t, errors.Is(err, errors.NotValid))

	member, err := f.svc.CreateTeamMember(ctx, &domain.TeamMember{Name: "Rui", Role: "Architect", Photo: testMediaPrefix + "team/rui.jpg", Active: true})
	require.NoError(t, err)

	_, err = f.svc.UpdateTeamMember(ctx, member.ID, &domain.TeamMember{Name: "Rui", Role: "Partner", Photo: testMediaPrefix + "team/rui-2.jpg", Active: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"team/rui.jpg"}, f.media.removed)

	_, err = f.svc.CreateHeroSlide(ctx, &domain.HeroSlide{Title: "No image"})
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = f.svc.CreateHeroSlide(ctx, &domain.HeroSlide{Title: "Welcome", Image: "/img/hero.jpg", Active: true})
	require.NoError(t, err)
	_, err = f.svc.CreateHeroSlide(ctx, &domain.HeroSlide{Title: "Retired", Image: "/img/old.jpg"})
	require.NoError(t, err)

	active, err := f.svc.ListHeroSlides(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Welcome", active[0].Title)
}

func TestGetHomePage(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	home, err := f.svc.GetHomePage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.HeroSlide{}, home.Slides)
	assert.Equal(t, []domain.Project{}, home.Featured)

	for i, title := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		_, err := f.svc.CreateProject(ctx, domain.KindProject, &domain.Project{Title: title, Published: true, Featured: i != 0})
		require.NoError(t, err)
	}
	for _, title := range []string{"N1", "N2", "N3", "N4"} {
		_, err := f.svc.CreateNews(ctx, &domain.NewsArticle{Title: title, Published: true})
		require.NoError(t, err)
	}

	home, err = f.svc.GetHomePage(ctx)
	require.NoError(t, err)
	assert.Len(t, home.Featured, 6)
	assert.Len(t, home.News, 3)
	for _, p := range home.Featured {
		assert.True(t, p.Featured)
	}
}
