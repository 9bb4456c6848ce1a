package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/studio-site/pkg/adapters/repository/sqldb"
	"github.com/wadjakorntonsri/studio-site/pkg/config"
	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
	"github.com/wadjakorntonsri/studio-site/pkg/core/services"
)

func testRepo(t *testing.T) *sqldb.Repository {
	t.Helper()
	repo, err := sqldb.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seed(t *testing.T, repo *sqldb.Repository) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	category := &domain.Category{Name: "Furniture", Slug: "furniture", Scope: domain.ScopeWork, CreatedAt: now}
	require.NoError(t, repo.CreateCategory(ctx, category))
	require.NoError(t, repo.CreateProject(ctx, &domain.Project{
		Kind: domain.KindWork, CategoryID: &category.ID, Title: "Oak Bench", Slug: "oak-bench",
		Gallery: []string{"/media/works/a.jpg"}, Published: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repo.CreateTeamMember(ctx, &domain.TeamMember{Name: "Ari", Role: "Designer", Active: true, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repo.CreateHeroSlide(ctx, &domain.HeroSlide{Title: "Spring", Image: "/media/hero/s.jpg", Active: true, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repo.CreateNews(ctx, &domain.NewsArticle{Title: "Opening", Slug: "opening", Body: "Hello", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repo.UpsertSection(ctx, &domain.SiteSection{Key: "contact", Title: "Contact", Content: json.RawMessage(`{"phone":"123"}`), UpdatedAt: now}))
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			source := testRepo(t)
			seed(t, source)

			dump, err := exportContent(ctx, source)
			require.NoError(t, err)
			assert.Len(t, dump.Projects, 1)
			assert.Len(t, dump.News, 1)

			var buf bytes.Buffer
			require.NoError(t, writeDump(&buf, dump, format))

			parsed, err := readDump(&buf)
			require.NoError(t, err)

			target := testRepo(t)
			// Occupy id 1 so the imported category gets a different id.
			require.NoError(t, target.CreateCategory(ctx, &domain.Category{Name: "Other", Slug: "other", Scope: domain.ScopeProject}))

			stats, err := importContent(ctx, target, parsed, time.Now())
			require.NoError(t, err)
			assert.Equal(t, 6, stats.Created)
			assert.Equal(t, 0, stats.Skipped)

			project, err := target.GetProjectBySlug(ctx, domain.KindWork, "oak-bench")
			require.NoError(t, err)
			require.NotNil(t, project)
			require.NotNil(t, project.CategoryID)
			category, err := target.GetCategory(ctx, *project.CategoryID)
			require.NoError(t, err)
			assert.Equal(t, "furniture", category.Slug)
			assert.Equal(t, []string{"/media/works/a.jpg"}, project.Gallery)

			section, err := target.GetSection(ctx, "contact")
			require.NoError(t, err)
			assert.JSONEq(t, `{"phone":"123"}`, string(section.Content))

			// A second import finds everything but sections already present.
			stats, err = importContent(ctx, target, parsed, time.Now())
			require.NoError(t, err)
			assert.Equal(t, 1, stats.Created)
			assert.Equal(t, 5, stats.Skipped)
		})
	}
}

func TestReadDump_Errors(t *testing.T) {
	_, err := readDump(strings.NewReader(""))
	assert.Error(t, err)

	_, err = readDump(strings.NewReader("projects: [oops"))
	assert.Error(t, err)
}

func TestImport_UnknownCategoryIsCleared(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)
	missing := int64(42)
	dump := &domain.ContentDump{Projects: []domain.Project{{Kind: domain.KindProject, Title: "Loft", Slug: "loft", CategoryID: &missing}}}

	_, err := importContent(ctx, repo, dump, time.Now())
	require.NoError(t, err)

	project, err := repo.GetProjectBySlug(ctx, domain.KindProject, "loft")
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Nil(t, project.CategoryID)
	assert.False(t, project.CreatedAt.IsZero())
}

func TestCreateAdminCommand(t *testing.T) {
	repo := testRepo(t)
	auth := services.NewAuthService(repo)
	var out bytes.Buffer
	ctx := context.Background()

	cmd := &CreateAdminCommand{Email: "Owner@Studio.example", Password: "long enough", stdout: &out}
	require.NoError(t, cmd.run(ctx, auth))
	assert.Contains(t, out.String(), "created admin owner@studio.example")

	assert.Error(t, cmd.run(ctx, auth))

	cmd.Reset = true
	cmd.Password = "another secret"
	require.NoError(t, cmd.run(ctx, auth))
	_, err := auth.SignIn(ctx, "owner@studio.example", "another secret")
	assert.NoError(t, err)
}

func TestAnalyticsCommands(t *testing.T) {
	repo := testRepo(t)
	analytics := services.NewAnalyticsService(repo, time.UTC)
	ctx := context.Background()
	var out bytes.Buffer

	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, key := range []string{"a", "b", "a"} {
		require.NoError(t, repo.InsertVisit(ctx, &domain.VisitRecord{Path: "/", VisitorKey: key, UserAgent: "ua", Referrer: "direct", ObservedAt: day}))
	}

	rebuild := &RebuildSummaryCommand{Date: "2024-05-01", stdout: &out}
	require.NoError(t, rebuild.run(ctx, analytics))
	assert.Equal(t, "2024-05-01: 3 visits, 2 unique visitors\n", out.String())

	rebuild.Date = "May 1st"
	assert.Error(t, rebuild.run(ctx, analytics))

	out.Reset()
	prune := &PruneVisitsCommand{OlderThanDays: 1, stdout: &out}
	require.NoError(t, prune.run(ctx, analytics))
	assert.Equal(t, "deleted 3 visits\n", out.String())

	prune.OlderThanDays = 0
	assert.Error(t, prune.run(ctx, analytics))
}

func TestParser_ExportToFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "studio.db")
	repo, err := sqldb.NewRepository("file:" + dbPath)
	require.NoError(t, err)
	seed(t, repo)
	require.NoError(t, repo.Close())

	outPath := filepath.Join(t.TempDir(), "dump.yaml")
	parser := buildParser(&config.Config{DatabaseURL: "file:" + dbPath}, &bytes.Buffer{})
	_, err = parser.ParseArgs([]string{"export", "--format", "yaml", "--output", outPath})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "slug: oak-bench")
}
