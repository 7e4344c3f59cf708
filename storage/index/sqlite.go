package index

import (
	"database/sql"
	"sync"
	"time"

	"gitlet/core/objects"
	_ "modernc.org/sqlite"
)

// SQLiteCatalog records commit metadata so that message search, id
// lookup and blob reference checks do not have to load every commit.
type SQLiteCatalog struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// NewSQLiteCatalog opens (or creates) the catalog database at path.
func NewSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	catalog := &SQLiteCatalog{
		db:   db,
		path: path,
	}

	if err := catalog.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return catalog, nil
}

func (c *SQLiteCatalog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS commits (
		id TEXT PRIMARY KEY,
		message TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		parent_count INTEGER DEFAULT 0,
		seq INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS commit_parents (
		commit_id TEXT,
		parent_id TEXT,
		position INTEGER,
		PRIMARY KEY (commit_id, position),
		FOREIGN KEY (commit_id) REFERENCES commits(id)
	);

	CREATE TABLE IF NOT EXISTS commit_files (
		commit_id TEXT,
		name TEXT,
		blob_id TEXT,
		PRIMARY KEY (commit_id, name),
		FOREIGN KEY (commit_id) REFERENCES commits(id)
	);

	CREATE INDEX IF NOT EXISTS idx_commit_files_blob ON commit_files(blob_id);
	CREATE INDEX IF NOT EXISTS idx_commits_seq ON commits(seq);
	`

	_, err := c.db.Exec(schema)
	return err
}

func (c *SQLiteCatalog) Path() string {
	return c.path
}

// Record adds a commit. Recording the same commit twice is a no-op.
func (c *SQLiteCatalog) Record(commit *objects.Commit) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT OR IGNORE INTO commits (id, message, timestamp, parent_count, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM commits))`,
		string(commit.ID), commit.Message, commit.Timestamp, len(commit.Parents))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tx.Commit()
	}

	for i, parent := range commit.Parents {
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO commit_parents (commit_id, parent_id, position)
			VALUES (?, ?, ?)`,
			string(commit.ID), string(parent), i); err != nil {
			return err
		}
	}

	for _, name := range commit.Tree.Names() {
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO commit_files (commit_id, name, blob_id)
			VALUES (?, ?, ?)`,
			string(commit.ID), name, string(commit.Tree[name])); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (c *SQLiteCatalog) queryDigests(query string, args ...interface{}) ([]objects.Digest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []objects.Digest
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, objects.Digest(id))
	}
	return ids, rows.Err()
}

// Containing returns commits whose message contains substr, oldest first.
// instr is case-sensitive, unlike LIKE.
func (c *SQLiteCatalog) Containing(substr string) ([]objects.Digest, error) {
	return c.queryDigests(`SELECT id FROM commits WHERE instr(message, ?) > 0 ORDER BY seq`, substr)
}

// Matching returns commits whose id contains fragment, sorted by id.
func (c *SQLiteCatalog) Matching(fragment string) ([]objects.Digest, error) {
	return c.queryDigests(`SELECT id FROM commits WHERE instr(id, ?) > 0 ORDER BY id`, fragment)
}

// ReferencesBlob reports whether any recorded commit tree points at id.
func (c *SQLiteCatalog) ReferencesBlob(id objects.Digest) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM commit_files WHERE blob_id = ?`, string(id)).Scan(&n)
	return n > 0, err
}

func (c *SQLiteCatalog) Count() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM commits`).Scan(&n)
	return n, err
}

// Reset drops every recorded commit.
func (c *SQLiteCatalog) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"commit_files", "commit_parents", "commits"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
