package classpath

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists class stubs in a SQLite database so unchanged dependency
// entries are not re-indexed across runs. Rows are keyed by the checksum
// of the entry the stubs came from; a changed entry gets a new checksum
// and its old rows simply go stale.
type Store struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS stubs (
	entry_checksum TEXT NOT NULL,
	name           TEXT NOT NULL,
	stub_json      BLOB NOT NULL,
	PRIMARY KEY (entry_checksum, name)
);`

// OpenStore opens (creating if needed) the stub store at path. Use
// ":memory:" for a throwaway store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open stub store: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init stub store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Load returns the cached stubs for an entry checksum, sorted by name.
// ok is false when the checksum has no rows, which callers treat as a
// miss to re-index and Save.
func (s *Store) Load(checksum string) ([]*ClassStub, bool, error) {
	rows, err := s.db.Query(
		`SELECT stub_json FROM stubs WHERE entry_checksum = ? ORDER BY name`, checksum)
	if err != nil {
		return nil, false, fmt.Errorf("load stubs: %w", err)
	}
	defer rows.Close()
	var out []*ClassStub
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, false, fmt.Errorf("load stubs: %w", err)
		}
		stub := new(ClassStub)
		if err := json.Unmarshal(raw, stub); err != nil {
			return nil, false, fmt.Errorf("decode stub: %w", err)
		}
		out = append(out, stub)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("load stubs: %w", err)
	}
	return out, len(out) > 0, nil
}

// Save replaces the cached stubs for an entry checksum.
func (s *Store) Save(checksum string, stubs []*ClassStub) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save stubs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM stubs WHERE entry_checksum = ?`, checksum); err != nil {
		tx.Rollback()
		return fmt.Errorf("save stubs: %w", err)
	}
	ins, err := tx.Prepare(`INSERT INTO stubs (entry_checksum, name, stub_json) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("save stubs: %w", err)
	}
	defer ins.Close()
	for _, stub := range stubs {
		raw, err := json.Marshal(stub)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode stub %s: %w", stub.Name, err)
		}
		if _, err := ins.Exec(checksum, stub.Name, raw); err != nil {
			tx.Rollback()
			return fmt.Errorf("save stub %s: %w", stub.Name, err)
		}
	}
	return tx.Commit()
}

// EntryChecksum hashes a classpath entry's content. The checksum is the
// cache key for Load and Save.
func EntryChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
