package feed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ddlcal/internal/config"
	"ddlcal/internal/ics"
	appLog "ddlcal/internal/log"
	"ddlcal/internal/model"
)

// Loader merges every configured source into one deadline list.
type Loader struct {
	cfg     config.FeedConfig
	loc     *time.Location
	fetcher *ics.Fetcher
	now     func() time.Time
}

// NewLoader builds a Loader. client may be nil.
func NewLoader(cfg config.FeedConfig, loc *time.Location, client *http.Client) *Loader {
	if loc == nil {
		loc = time.Local
	}
	return &Loader{
		cfg:     cfg,
		loc:     loc,
		fetcher: ics.NewFetcher(cfg.CacheDir, client),
		now:     time.Now,
	}
}

// Load returns JSON, then SQLite, then ICS deadlines. A failing source is
// logged and skipped; the returned error joins those failures so callers
// can report them, but the deadlines from healthy sources are always
// returned.
func (l *Loader) Load(ctx context.Context) ([]model.Deadline, error) {
	var (
		out  []model.Deadline
		errs []error
	)

	if l.cfg.JSON != "" {
		events, err := LoadJSONFile(l.cfg.JSON, l.loc)
		if err != nil {
			appLog.Error("feed: json source failed", err, "path", l.cfg.JSON)
			errs = append(errs, err)
		}
		out = append(out, events...)
	}

	if l.cfg.SQLite != "" {
		events, err := LoadSQLite(ctx, l.cfg.SQLite, l.loc)
		if err != nil {
			appLog.Error("feed: sqlite source failed", err, "path", l.cfg.SQLite)
			errs = append(errs, err)
		}
		out = append(out, events...)
	}

	if len(l.cfg.ICS) > 0 {
		events, err := l.loadICS(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, events...)
	}

	appLog.Info("feed loaded", "deadlines", len(out), "failed_sources", len(errs))
	return out, errors.Join(errs...)
}

func (l *Loader) loadICS(ctx context.Context) ([]model.Deadline, error) {
	sources := make([]ics.Source, 0, len(l.cfg.ICS))
	for _, c := range l.cfg.ICS {
		if c.URL == "" {
			continue
		}
		sources = append(sources, ics.Source{ID: c.SourceID(), URL: c.URL})
	}

	results, fetchErr := l.fetcher.FetchAll(ctx, sources)

	var parsed []ics.ParsedDeadline
	for _, res := range results {
		items, err := ics.ParseICS(res.Source, res.Body, l.loc)
		if err != nil {
			fetchErr = errors.Join(fetchErr, err)
			continue
		}
		parsed = append(parsed, items...)
	}

	now := l.now().In(l.loc)
	res, err := ics.Expand(parsed, ics.ExpandConfig{
		DisplayLocation: l.loc,
		RangeStart:      now.AddDate(0, 0, -l.cfg.BackfillDays),
		RangeEnd:        now.AddDate(0, 0, l.cfg.HorizonDays),
	})
	if err != nil {
		return nil, errors.Join(fetchErr, err)
	}
	return res.Deadlines, fetchErr
}
