package feed

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	appLog "ddlcal/internal/log"
	"ddlcal/internal/model"

	_ "modernc.org/sqlite"
)

const deadlinesQuery = `SELECT id, title, type, due, completed, notify_before FROM deadlines ORDER BY rowid`

// LoadSQLite reads the deadlines table of the database at path. Only
// SELECTs are issued; the owning application keeps writing it.
//
// Expected columns: id TEXT, title TEXT, type TEXT NULL, due TEXT NULL,
// completed INTEGER, notify_before REAL NULL.
func LoadSQLite(ctx context.Context, path string, loc *time.Location) ([]model.Deadline, error) {
	// Opening a missing path would create an empty database.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, deadlinesQuery)
	if err != nil {
		return nil, fmt.Errorf("query deadlines: %w", err)
	}
	defer rows.Close()

	var out []model.Deadline
	for rows.Next() {
		var (
			id, title, typ, due sql.NullString
			completed           sql.NullBool
			notify              sql.NullFloat64
		)
		if err := rows.Scan(&id, &title, &typ, &due, &completed, &notify); err != nil {
			appLog.Warn("feed: skipping unreadable sqlite row", "err", err)
			continue
		}

		d := model.Deadline{
			ID:        model.ID(strings.TrimSpace(id.String)),
			Title:     title.String,
			Type:      strings.TrimSpace(typ.String),
			Completed: completed.Bool,
			Source:    "sqlite",
		}
		if due.Valid {
			if t, ok := model.ParseDue(due.String, loc); ok {
				d.Due = t
			}
		}
		if notify.Valid && notify.Float64 >= 0 {
			v := notify.Float64
			d.NotifyBefore = &v
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("iterate deadlines: %w", err)
	}
	return out, nil
}
