package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// ReportColumns are the error_reports columns the report store reads and
// writes. A migrated database missing any of them is unusable.
var ReportColumns = []string{"id", "command", "kind", "message", "stack", "created_at", "argv", "source"}

// ErrNewerSchema is returned for a database written by a newer mach.
var ErrNewerSchema = errors.New("error report database is newer than this mach")

// Migration is one schema change of the error report database, read from
// sql/NN_name.sql.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

const createVersionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// Load returns the embedded migrations. Versions start at 1 and have no
// gaps, so a missing file fails here rather than in a user's database.
func Load() ([]Migration, error) {
	files, err := fs.Glob(sqlFiles, "sql/*.sql")
	if err != nil {
		return nil, err
	}

	out := make([]Migration, 0, len(files))
	for _, file := range files {
		base := strings.TrimSuffix(path.Base(file), ".sql")
		num, name, ok := strings.Cut(base, "_")
		version, err := strconv.Atoi(num)
		if !ok || err != nil || name == "" {
			return nil, fmt.Errorf("migration %s: want NN_name.sql", path.Base(file))
		}
		body, err := sqlFiles.ReadFile(file)
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: version, Name: name, SQL: string(body)})
	}

	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	for i, m := range out {
		if m.Version != i+1 {
			return nil, fmt.Errorf("migration %02d_%s: expected version %d", m.Version, m.Name, i+1)
		}
	}
	return out, nil
}

// Run brings db up to the latest report schema and checks the result.
func Run(db *sql.DB) error {
	all, err := Load()
	if err != nil {
		return err
	}

	current, err := CurrentVersion(db)
	if err != nil {
		return err
	}
	if latest := len(all); current > latest {
		return fmt.Errorf("%w (version %d, known up to %d)", ErrNewerSchema, current, latest)
	}

	for _, m := range all[current:] {
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration %02d_%s: %w", m.Version, m.Name, err)
		}
	}
	return Verify(db)
}

func apply(db *sql.DB, m Migration) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(m.SQL); err != nil {
		return err
	}
	if _, err = tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`, m.Version, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}

// CurrentVersion returns the highest applied version, 0 for a new database.
func CurrentVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(createVersionTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var version sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

// Verify reports the ReportColumns missing from error_reports.
func Verify(db *sql.DB) error {
	rows, err := db.Query(`SELECT name FROM pragma_table_info('error_reports')`)
	if err != nil {
		return fmt.Errorf("inspect error_reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var have []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		have = append(have, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, col := range ReportColumns {
		if !slices.Contains(have, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("error_reports is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
