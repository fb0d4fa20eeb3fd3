package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrReportNotFound is returned by Get for an unknown id.
var ErrReportNotFound = errors.New("error report not found")

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Kind classifies what broke.
type Kind string

const (
	KindHandler   Kind = "handler"
	KindModule    Kind = "module"
	KindFramework Kind = "framework"
)

// Report is one stored failure of a command or of mach itself.
type Report struct {
	ID        string
	Command   string
	Kind      Kind
	Message   string
	Stack     string
	Source    string
	Argv      []string
	CreatedAt time.Time
}

// ReportFilter narrows List.
type ReportFilter struct {
	Command string
	Since   *time.Time
	Limit   int
}

// Insert stores r and returns its id. An id and timestamp are assigned
// when missing.
func (s *Store) Insert(r Report) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	argv, err := json.Marshal(r.Argv)
	if err != nil {
		return "", fmt.Errorf("encode argv: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO error_reports
		 (id, command, kind, message, stack, source, argv, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Command,
		string(r.Kind),
		r.Message,
		r.Stack,
		r.Source,
		string(argv),
		r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert report: %w", err)
	}
	return r.ID, nil
}

const selectReports = `
	SELECT
		id,
		command,
		kind,
		message,
		stack,
		source,
		argv,
		created_at
	FROM error_reports
`

// List returns reports matching filter, newest first.
func (s *Store) List(filter ReportFilter) ([]Report, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Command != "" {
		clauses = append(clauses, "command = ?")
		args = append(args, filter.Command)
	}

	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	query := selectReports
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the report with id. A unique id prefix is accepted.
func (s *Store) Get(id string) (Report, error) {
	rows, err := s.db.Query(selectReports+" WHERE id LIKE ? || '%' LIMIT 2", id)
	if err != nil {
		return Report{}, err
	}
	defer func() { _ = rows.Close() }()

	var found []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return Report{}, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return Report{}, err
	}

	switch len(found) {
	case 0:
		return Report{}, ErrReportNotFound
	case 1:
		return found[0], nil
	default:
		return Report{}, fmt.Errorf("report id %q is ambiguous", id)
	}
}

// Clear deletes every report and returns how many were removed.
func (s *Store) Clear() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM error_reports`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns the number of stored reports.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM error_reports`).Scan(&n)
	return n, err
}

func scanReport(rows *sql.Rows) (Report, error) {
	var (
		r    Report
		kind string
		argv string
		ts   string
	)

	if err := rows.Scan(
		&r.ID,
		&r.Command,
		&kind,
		&r.Message,
		&r.Stack,
		&r.Source,
		&argv,
		&ts,
	); err != nil {
		return Report{}, err
	}

	t, err := time.Parse(timeLayout, ts)
	if err != nil {
		return Report{}, err
	}
	r.CreatedAt = t
	r.Kind = Kind(kind)

	if argv != "" {
		if err := json.Unmarshal([]byte(argv), &r.Argv); err != nil {
			return Report{}, fmt.Errorf("decode argv: %w", err)
		}
	}
	return r, nil
}
