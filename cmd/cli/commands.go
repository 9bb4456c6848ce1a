package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/juju/errors"

	"github.com/wadjakorntonsri/studio-site/pkg/adapters/repository/sqldb"
	"github.com/wadjakorntonsri/studio-site/pkg/config"
	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
	"github.com/wadjakorntonsri/studio-site/pkg/core/services"
)

// GlobalFlags apply to every subcommand.
type GlobalFlags struct {
	Database string `long:"database" short:"d" description:"Database URL (defaults to DATABASE_URL)"`

	cfg *config.Config
}

func (g *GlobalFlags) openRepository() (*sqldb.Repository, error) {
	url := g.Database
	if url == "" {
		url = g.cfg.DatabaseURL
	}
	repo, err := sqldb.NewRepository(url)
	if err != nil {
		return nil, errors.Annotate(err, "opening database")
	}
	return repo, nil
}

func (g *GlobalFlags) analytics(repo *sqldb.Repository) *services.AnalyticsService {
	location, err := g.cfg.AnalyticsLocation()
	if err != nil {
		logger.Warningf("unknown ANALYTICS_TIMEZONE %q, using UTC: %v", g.cfg.AnalyticsTimezone, err)
	}
	return services.NewAnalyticsService(repo, location)
}

// ExportCommand writes all site content to stdout or a file.
type ExportCommand struct {
	Format string `long:"format" short:"f" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Output string `long:"output" short:"o" description:"Write to this file instead of stdout"`

	globals *GlobalFlags
	stdout  io.Writer
}

func (c *ExportCommand) Execute(args []string) error {
	repo, err := c.globals.openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	dump, err := exportContent(context.Background(), repo)
	if err != nil {
		return err
	}

	out := c.stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return errors.Trace(err)
		}
		defer f.Close()
		out = f
	}
	return writeDump(out, dump, c.Format)
}

// ImportCommand loads a dump produced by export.
type ImportCommand struct {
	File string `long:"file" description:"YAML or JSON dump to import" required:"true"`

	globals *GlobalFlags
	stdout  io.Writer
}

func (c *ImportCommand) Execute(args []string) error {
	f, err := os.Open(c.File)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()

	dump, err := readDump(f)
	if err != nil {
		return err
	}

	repo, err := c.globals.openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	stats, err := importContent(context.Background(), repo, dump, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "imported %d rows, skipped %d existing\n", stats.Created, stats.Skipped)
	return nil
}

// CreateAdminCommand adds a password login for the admin panel.
type CreateAdminCommand struct {
	Email    string `long:"email" description:"Admin e-mail" required:"true"`
	Password string `long:"password" env:"ADMIN_PASSWORD" description:"Admin password" required:"true"`
	Reset    bool   `long:"reset" description:"Replace the password of an existing admin"`

	globals *GlobalFlags
	stdout  io.Writer
}

func (c *CreateAdminCommand) Execute(args []string) error {
	repo, err := c.globals.openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()
	return c.run(context.Background(), services.NewAuthService(repo))
}

func (c *CreateAdminCommand) run(ctx context.Context, auth *services.AuthService) error {
	if c.Reset {
		if err := auth.SetPassword(ctx, c.Email, c.Password); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "password updated for %s\n", c.Email)
		return nil
	}
	user, err := auth.CreateAdmin(ctx, c.Email, c.Password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "created admin %s (id %d)\n", user.Email, user.ID)
	return nil
}

// RebuildSummaryCommand recomputes one day's analytics summary from raw visits.
type RebuildSummaryCommand struct {
	Date string `long:"date" description:"Day to rebuild, YYYY-MM-DD (defaults to today)"`

	globals *GlobalFlags
	stdout  io.Writer
}

func (c *RebuildSummaryCommand) Execute(args []string) error {
	repo, err := c.globals.openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()
	return c.run(context.Background(), c.globals.analytics(repo))
}

func (c *RebuildSummaryCommand) run(ctx context.Context, analytics *services.AnalyticsService) error {
	day := time.Now()
	if c.Date != "" {
		parsed, err := time.ParseInLocation(domain.DateLayout, c.Date, analytics.Location())
		if err != nil {
			return errors.NewNotValid(err, fmt.Sprintf("date %q must be YYYY-MM-DD", c.Date))
		}
		day = parsed
	}
	summary, err := analytics.RebuildSummary(ctx, day)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s: %d visits, %d unique visitors\n", summary.Date, summary.TotalVisits, summary.UniqueVisitors)
	return nil
}

// PruneVisitsCommand deletes raw visit rows past the retention window.
type PruneVisitsCommand struct {
	OlderThanDays int `long:"older-than-days" description:"Delete visits older than this many days" default:"365"`

	globals *GlobalFlags
	stdout  io.Writer
}

func (c *PruneVisitsCommand) Execute(args []string) error {
	repo, err := c.globals.openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()
	return c.run(context.Background(), c.globals.analytics(repo))
}

func (c *PruneVisitsCommand) run(ctx context.Context, analytics *services.AnalyticsService) error {
	deleted, err := analytics.PruneVisits(ctx, c.OlderThanDays)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "deleted %d visits\n", deleted)
	return nil
}
