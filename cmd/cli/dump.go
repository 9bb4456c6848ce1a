package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

const newsBatch = 100

// exportContent reads every content table into a dump.
func exportContent(ctx context.Context, repo ports.ContentRepository) (*domain.ContentDump, error) {
	dump := &domain.ContentDump{}
	var err error

	if dump.Categories, err = repo.ListCategories(ctx, ""); err != nil {
		return nil, errors.Annotate(err, "exporting categories")
	}
	if dump.Projects, err = repo.ListProjects(ctx, domain.ProjectFilter{}); err != nil {
		return nil, errors.Annotate(err, "exporting projects")
	}
	if dump.Team, err = repo.ListTeamMembers(ctx, false); err != nil {
		return nil, errors.Annotate(err, "exporting team")
	}
	if dump.HeroSlides, err = repo.ListHeroSlides(ctx, false); err != nil {
		return nil, errors.Annotate(err, "exporting hero slides")
	}
	if dump.Sections, err = repo.ListSections(ctx); err != nil {
		return nil, errors.Annotate(err, "exporting sections")
	}

	dump.News = []domain.NewsArticle{}
	for offset := 0; ; offset += newsBatch {
		batch, err := repo.ListNews(ctx, false, newsBatch, offset)
		if err != nil {
			return nil, errors.Annotate(err, "exporting news")
		}
		dump.News = append(dump.News, batch...)
		if len(batch) < newsBatch {
			break
		}
	}
	return dump, nil
}

// writeDump encodes the dump as indented JSON or as YAML.
func writeDump(w io.Writer, dump *domain.ContentDump, format string) error {
	if format != "yaml" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	}

	// Round-trip through JSON so YAML keys follow the json tags.
	raw, err := json.Marshal(dump)
	if err != nil {
		return errors.Trace(err)
	}
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return errors.Trace(err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Trace(err)
	}
	return enc.Close()
}

// readDump accepts YAML or JSON; JSON documents are valid YAML.
func readDump(r io.Reader) (*domain.ContentDump, error) {
	var doc interface{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.NotValidf("empty content dump")
		}
		return nil, errors.Annotate(err, "parsing content dump")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Annotate(err, "parsing content dump")
	}
	dump := &domain.ContentDump{}
	if err := json.Unmarshal(raw, dump); err != nil {
		return nil, errors.Annotate(err, "parsing content dump")
	}
	return dump, nil
}

type importStats struct {
	Created int
	Skipped int
}

// importContent inserts dump rows that are not already present. Rows are
// matched by slug (categories per scope, projects per kind, news), team
// members by name and hero slides by title and image. Sections are upserted.
// Project category ids are remapped to the ids the categories get here.
func importContent(ctx context.Context, repo ports.ContentRepository, dump *domain.ContentDump, now time.Time) (importStats, error) {
	var stats importStats
	stamp := func(t time.Time) time.Time {
		if t.IsZero() {
			return now
		}
		return t
	}

	existing, err := repo.ListCategories(ctx, "")
	if err != nil {
		return stats, errors.Annotate(err, "listing categories")
	}
	byKey := make(map[string]int64, len(existing))
	for _, c := range existing {
		byKey[c.Scope+"/"+c.Slug] = c.ID
	}
	categoryIDs := make(map[int64]int64)
	for _, c := range dump.Categories {
		if id, ok := byKey[c.Scope+"/"+c.Slug]; ok {
			categoryIDs[c.ID] = id
			stats.Skipped++
			continue
		}
		oldID := c.ID
		c.CreatedAt = stamp(c.CreatedAt)
		if err := repo.CreateCategory(ctx, &c); err != nil {
			return stats, errors.Annotatef(err, "importing category %q", c.Slug)
		}
		categoryIDs[oldID] = c.ID
		byKey[c.Scope+"/"+c.Slug] = c.ID
		stats.Created++
	}

	for _, p := range dump.Projects {
		found, err := repo.GetProjectBySlug(ctx, p.Kind, p.Slug)
		if err != nil {
			return stats, errors.Annotatef(err, "looking up project %q", p.Slug)
		}
		if found != nil {
			stats.Skipped++
			continue
		}
		if p.CategoryID != nil {
			if id, ok := categoryIDs[*p.CategoryID]; ok {
				p.CategoryID = &id
			} else {
				logger.Warningf("project %q references unknown category %d", p.Slug, *p.CategoryID)
				p.CategoryID = nil
			}
		}
		if p.Gallery == nil {
			p.Gallery = []string{}
		}
		p.CreatedAt = stamp(p.CreatedAt)
		p.UpdatedAt = stamp(p.UpdatedAt)
		if err := repo.CreateProject(ctx, &p); err != nil {
			return stats, errors.Annotatef(err, "importing project %q", p.Slug)
		}
		stats.Created++
	}

	members, err := repo.ListTeamMembers(ctx, false)
	if err != nil {
		return stats, errors.Annotate(err, "listing team")
	}
	names := make(map[string]bool, len(members))
	for _, m := range members {
		names[m.Name] = true
	}
	for _, m := range dump.Team {
		if names[m.Name] {
			stats.Skipped++
			continue
		}
		m.CreatedAt = stamp(m.CreatedAt)
		m.UpdatedAt = stamp(m.UpdatedAt)
		if err := repo.CreateTeamMember(ctx, &m); err != nil {
			return stats, errors.Annotatef(err, "importing team member %q", m.Name)
		}
		names[m.Name] = true
		stats.Created++
	}

	slides, err := repo.ListHeroSlides(ctx, false)
	if err != nil {
		return stats, errors.Annotate(err, "listing hero slides")
	}
	seen := make(map[string]bool, len(slides))
	for _, s := range slides {
		seen[s.Title+"|"+s.Image] = true
	}
	for _, s := range dump.HeroSlides {
		if seen[s.Title+"|"+s.Image] {
			stats.Skipped++
			continue
		}
		s.CreatedAt = stamp(s.CreatedAt)
		s.UpdatedAt = stamp(s.UpdatedAt)
		if err := repo.CreateHeroSlide(ctx, &s); err != nil {
			return stats, errors.Annotatef(err, "importing hero slide %q", s.Title)
		}
		seen[s.Title+"|"+s.Image] = true
		stats.Created++
	}

	for _, a := range dump.News {
		found, err := repo.GetNewsBySlug(ctx, a.Slug)
		if err != nil {
			return stats, errors.Annotatef(err, "looking up article %q", a.Slug)
		}
		if found != nil {
			stats.Skipped++
			continue
		}
		a.CreatedAt = stamp(a.CreatedAt)
		a.UpdatedAt = stamp(a.UpdatedAt)
		if err := repo.CreateNews(ctx, &a); err != nil {
			return stats, errors.Annotatef(err, "importing article %q", a.Slug)
		}
		stats.Created++
	}

	for _, s := range dump.Sections {
		if len(s.Content) == 0 {
			s.Content = json.RawMessage("{}")
		}
		s.UpdatedAt = stamp(s.UpdatedAt)
		if err := repo.UpsertSection(ctx, &s); err != nil {
			return stats, errors.Annotatef(err, "importing section %q", s.Key)
		}
		stats.Created++
	}
	return stats, nil
}
