package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Well-known local store keys. Only UX-ephemeral state lives here; domain
// data and credentials never do.
const (
	KeyTheme    = "theme"
	KeyLanguage = "language"
)

// LockoutKey namespaces a persisted lockout end timestamp.
func LockoutKey(scope, subject string) string {
	return "lockout:" + scope + ":" + subject
}

// LocalStore is a small embedded key/value store backed by SQLite. It plays
// the role of device-local storage: it survives restarts so lockout
// countdowns resume from their absolute end time instead of resetting.
type LocalStore struct {
	db *sql.DB
}

func OpenLocalStore(path string) (*LocalStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping local store: %w", err)
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate local store: %w", err)
	}

	return &LocalStore{db: db}, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) Set(key, value string) error {
	_, err := s.db.Exec(`
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (s *LocalStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *LocalStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// SetLockoutEnd persists the absolute end timestamp for a lockout. Storing
// the end time, never a remaining count, is what lets a restart recompute
// the countdown as end minus now.
func (s *LocalStore) SetLockoutEnd(key string, end time.Time) error {
	return s.Set(key, strconv.FormatInt(end.Unix(), 10))
}

// LockoutEnd reads a persisted lockout end timestamp.
func (s *LocalStore) LockoutEnd(key string) (time.Time, bool, error) {
	value, ok, err := s.Get(key)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Unreadable value: treat as absent and drop it.
		_ = s.Delete(key)
		return time.Time{}, false, nil
	}
	return time.Unix(unix, 0), true, nil
}
