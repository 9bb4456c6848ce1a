package main

import (
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/wadjakorntonsri/studio-site/pkg/config"
)

var logger = loggo.GetLogger("studio.cli")

func buildParser(cfg *config.Config, stdout io.Writer) *goflags.Parser {
	globals := &GlobalFlags{cfg: cfg}

	parser := goflags.NewParser(globals, goflags.Default)
	parser.Name = "studio-cli"
	parser.LongDescription = "Maintenance tasks for the studio site database."

	parser.AddCommand("export", "Export site content", "Write categories, projects, team, hero slides, news and sections as JSON or YAML.",
		&ExportCommand{globals: globals, stdout: stdout})
	parser.AddCommand("import", "Import site content", "Insert content from an export file, skipping rows that already exist.",
		&ImportCommand{globals: globals, stdout: stdout})
	parser.AddCommand("create-admin", "Create an admin login", "Create a password login for the admin panel, or reset one with --reset.",
		&CreateAdminCommand{globals: globals, stdout: stdout})
	parser.AddCommand("rebuild-summary", "Rebuild a daily analytics summary", "Recompute a day's visit totals from the raw visit rows.",
		&RebuildSummaryCommand{globals: globals, stdout: stdout})
	parser.AddCommand("prune-visits", "Delete old visit rows", "Delete raw visits older than the retention window. Daily summaries are kept.",
		&PruneVisitsCommand{globals: globals, stdout: stdout})

	return parser
}

func main() {
	cfg := config.Load()
	if err := loggo.ConfigureLoggers(cfg.LogConfig); err != nil {
		logger.Warningf("invalid LOG_CONFIG %q: %v", cfg.LogConfig, err)
	}

	if _, err := buildParser(cfg, os.Stdout).Parse(); err != nil {
		var flagsErr *goflags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
			return
		}
		// goflags.Default has already printed the message.
		logger.Debugf("%s", errors.ErrorStack(err))
		os.Exit(1)
	}
}
