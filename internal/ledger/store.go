package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"clamsutils/internal/config"
	"clamsutils/internal/services"
)

// Store persists ledger entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// DefaultRecentLimit bounds Recent when the caller passes a non-positive limit.
	DefaultRecentLimit = 20
)

// Entry is one processed input.
type Entry struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	InputPath   string    `json:"input_path"`
	OutputPath  string    `json:"output_path,omitempty"`
	GUID        string    `json:"guid,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	InputChars  int       `json:"input_chars"`
	OutputChars int       `json:"output_chars"`
	Speakers    int       `json:"speakers"`
	CreatedAt   time.Time `json:"created_at"`
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// Concurrent batch workers share one Store, so writes back off on SQLITE_BUSY.
func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the ledger database configured in cfg.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil || strings.TrimSpace(cfg.Ledger.Path) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ledger", "open", "ledger path is not configured", nil)
	}
	return OpenPath(cfg.Ledger.Path)
}

// OpenPath opens the ledger at dbPath, creating parent directories and the
// schema as needed.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Record inserts an entry. A zero CreatedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	if strings.TrimSpace(entry.InputPath) == "" {
		return entry, errors.New("ledger entry requires an input path")
	}
	if entry.Status == "" {
		return entry, errors.New("ledger entry requires a status")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO entries (run_id, input_path, output_path, guid, status, error_message,
                input_chars, output_chars, speakers, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.RunID,
			entry.InputPath,
			nullableString(entry.OutputPath),
			nullableString(entry.GUID),
			entry.Status,
			nullableString(entry.Error),
			entry.InputChars,
			entry.OutputChars,
			entry.Speakers,
			entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return entry, fmt.Errorf("insert ledger entry: %w", err)
	}
	if id, idErr := res.LastInsertId(); idErr == nil {
		entry.ID = id
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, input_path, output_path, guid, status, error_message,
                input_chars, output_chars, speakers, created_at
         FROM entries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry      Entry
		outputPath sql.NullString
		guid       sql.NullString
		errMessage sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.InputPath,
		&outputPath,
		&guid,
		&entry.Status,
		&errMessage,
		&entry.InputChars,
		&entry.OutputChars,
		&entry.Speakers,
		&createdRaw,
	); err != nil {
		return Entry{}, fmt.Errorf("scan ledger entry: %w", err)
	}
	entry.OutputPath = outputPath.String
	entry.GUID = guid.String
	entry.Error = errMessage.String
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
