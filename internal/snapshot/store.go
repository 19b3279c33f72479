// Package snapshot persists completed reflection-pipeline runs.
// Snapshots are immutable once written: there is no update operation, a
// revised run is saved as a new snapshot. The store exclusively owns the
// identifier space; ids are assigned by SQLite AUTOINCREMENT and are
// strictly increasing, never reused.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"cotreflect/internal/logging"
)

// previewLen caps the question preview in listings, in runes.
const previewLen = 50

// Record is the caller-supplied content of a snapshot.
type Record struct {
	Name            string
	ModelName       string
	UserPrompt      string
	SystemPrompt    string
	CotPrompt       string // empty means absent (direct-mode run)
	InitialResponse string
	Thinking        string
	Reflection      string
	FinalResponse   string
	Tags            string
}

// Snapshot is one persisted pipeline run. Field names in the JSON form are
// the export schema and must stay stable.
type Snapshot struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	CreatedAt       string `json:"created_at"`
	ModelName       string `json:"model_name"`
	UserPrompt      string `json:"user_prompt"`
	SystemPrompt    string `json:"system_prompt"`
	CotPrompt       string `json:"cot_prompt,omitempty"`
	InitialResponse string `json:"initial_response"`
	Thinking        string `json:"thinking"`
	Reflection      string `json:"reflection"`
	FinalResponse   string `json:"final_response"`
	Tags            string `json:"tags"`
}

// Summary is one row of a listing.
type Summary struct {
	ID        int64
	Name      string
	CreatedAt string
	ModelName string
	Preview   string
	Tags      string
}

// StorageError reports a persistence-medium failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("snapshot store %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store is a durable keyed collection of snapshots backed by SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewStore opens (creating if needed) the snapshot database at path.
// Use ":memory:" for an ephemeral store.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &StorageError{Op: "open", Err: fmt.Errorf("failed to create directory: %w", err)}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set sqlite journal_mode=WAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: err}
	}

	logging.Store("snapshot store ready at %s", path)
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			model_name TEXT NOT NULL,
			user_prompt TEXT NOT NULL,
			system_prompt TEXT NOT NULL,
			cot_prompt TEXT,
			initial_response TEXT NOT NULL,
			thinking TEXT NOT NULL,
			reflection TEXT NOT NULL,
			final_response TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Save assigns the next identifier and creation timestamp, persists the
// record, and returns the new id.
func (s *Store) Save(rec Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := time.Now().UTC().Format(time.RFC3339Nano)

	var cot interface{}
	if rec.CotPrompt != "" {
		cot = rec.CotPrompt
	}

	res, err := s.db.Exec(
		`INSERT INTO snapshots
			(name, created_at, model_name, user_prompt, system_prompt, cot_prompt,
			 initial_response, thinking, reflection, final_response, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Name, createdAt, rec.ModelName, rec.UserPrompt, rec.SystemPrompt, cot,
		rec.InitialResponse, rec.Thinking, rec.Reflection, rec.FinalResponse, rec.Tags,
	)
	if err != nil {
		return 0, &StorageError{Op: "save", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "save", Err: err}
	}

	logging.Store("saved snapshot id=%d name=%q model=%q", id, rec.Name, rec.ModelName)
	return id, nil
}

const snapshotColumns = `id, name, created_at, model_name, user_prompt, system_prompt,
	cot_prompt, initial_response, thinking, reflection, final_response, tags`

func scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var snap Snapshot
	var cot sql.NullString
	err := row.Scan(&snap.ID, &snap.Name, &snap.CreatedAt, &snap.ModelName,
		&snap.UserPrompt, &snap.SystemPrompt, &cot,
		&snap.InitialResponse, &snap.Thinking, &snap.Reflection,
		&snap.FinalResponse, &snap.Tags)
	if err != nil {
		return nil, err
	}
	if cot.Valid {
		snap.CotPrompt = cot.String
	}
	return &snap, nil
}

// GetByID returns the snapshot with the given id. A missing id is a normal
// outcome reported through the found flag, not an error.
func (s *Store) GetByID(id int64) (*Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Op: "get", Err: err}
	}
	return snap, true, nil
}

// List returns snapshot summaries newest-first. A non-empty search term
// restricts results to snapshots whose name, question, or tags contain the
// term as a case-insensitive substring.
func (s *Store) List(search string) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, created_at, model_name, user_prompt, tags
		FROM snapshots`
	var args []interface{}

	if term := strings.TrimSpace(search); term != "" {
		// Both sides go through SQLite's lower() so the case folding is
		// symmetric (it is ASCII-only either way).
		query += ` WHERE instr(lower(name), lower(?)) > 0
			OR instr(lower(user_prompt), lower(?)) > 0
			OR instr(lower(tags), lower(?)) > 0`
		args = append(args, term, term, term)
	}
	// Ids are assigned in creation order and never reused, so id order is
	// chronological. created_at text is RFC3339Nano, which trims trailing
	// zeros and does not sort lexicographically.
	query += ` ORDER BY id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var question string
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.CreatedAt, &sum.ModelName, &question, &sum.Tags); err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		sum.Preview = truncate(question, previewLen)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return summaries, nil
}

// Delete removes the snapshot with the given id. Deleting a missing id
// returns false, not an error.
func (s *Store) Delete(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return false, &StorageError{Op: "delete", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &StorageError{Op: "delete", Err: err}
	}
	if n > 0 {
		logging.Store("deleted snapshot id=%d", id)
	}
	return n > 0, nil
}

// Export returns the complete persisted record as indented JSON. The JSON
// field names are a stable schema: re-importing the bytes reconstructs an
// identical record apart from a freshly assigned id.
func (s *Store) Export(id int64) ([]byte, bool, error) {
	snap, found, err := s.GetByID(id)
	if err != nil || !found {
		return nil, found, err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, true, &StorageError{Op: "export", Err: err}
	}
	return data, true, nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
