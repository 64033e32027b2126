package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver"
	"github.com/mwantia/layerfs/vpath"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteResolver serves mounted content from a SQLite table.
//
// Every entry is stored with its parent path and base name so that a
// directory listing is a single indexed query. Ancestor directories are
// created implicitly when content is stored.
type SQLiteResolver struct {
	db *sql.DB
}

// NewSQLiteResolver opens the database at dbPath.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewSQLiteResolver(dbPath string) (*SQLiteResolver, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// An in-memory database only exists for a single connection
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	sr := &SQLiteResolver{
		db: db,
	}

	if err := sr.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return sr, nil
}

func (sr *SQLiteResolver) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS layerfs_entries (
		path TEXT PRIMARY KEY,
		parent TEXT NOT NULL,
		name TEXT NOT NULL,
		mode INTEGER NOT NULL,
		content BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_layerfs_entries_parent ON layerfs_entries(parent);
	INSERT OR IGNORE INTO layerfs_entries (path, parent, name, mode) VALUES ('/', '', '', ` + strconv.FormatUint(uint64(data.ModeDir|data.DefaultDirMode), 10) + `);
	`

	_, err := sr.db.Exec(schema)
	return err
}

func (sr *SQLiteResolver) Close() error {
	return sr.db.Close()
}

func normalize(path string) string {
	return vpath.RemoveTrailingSeparator(vpath.Resolve("/", path))
}

// Put stores content at path and creates every missing ancestor directory.
func (sr *SQLiteResolver) Put(ctx context.Context, path string, content []byte) error {
	return sr.put(ctx, normalize(path), data.ModeFile|data.DefaultFileMode, content)
}

// PutDir stores an empty directory at path.
func (sr *SQLiteResolver) PutDir(ctx context.Context, path string) error {
	return sr.put(ctx, normalize(path), data.ModeDir|data.DefaultDirMode, nil)
}

func (sr *SQLiteResolver) put(ctx context.Context, key string, mode data.FileMode, content []byte) error {
	tx, err := sr.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for dir := vpath.Dirname(key); !vpath.IsRoot(dir); dir = vpath.Dirname(dir) {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO layerfs_entries (path, parent, name, mode) VALUES (?, ?, ?, ?)",
			dir, vpath.Dirname(dir), vpath.Basename(dir), int64(data.ModeDir|data.DefaultDirMode)); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO layerfs_entries (path, parent, name, mode, content) VALUES (?, ?, ?, ?, ?)",
		key, vpath.Dirname(key), vpath.Basename(key), int64(mode), content); err != nil {
		return err
	}

	return tx.Commit()
}

func (sr *SQLiteResolver) List(ctx context.Context, path string) ([]string, error) {
	stat, err := sr.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, data.NewPathError(data.ENOTDIR, "list", path)
	}

	rows, err := sr.db.QueryContext(ctx,
		"SELECT name FROM layerfs_entries WHERE parent = ? AND path != '/' ORDER BY name", normalize(path))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func (sr *SQLiteResolver) Stat(ctx context.Context, path string) (*resolver.Stat, error) {
	var mode, size int64
	err := sr.db.QueryRowContext(ctx,
		"SELECT mode, COALESCE(length(content), 0) FROM layerfs_entries WHERE path = ?",
		normalize(path)).Scan(&mode, &size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, data.NewPathError(data.ENOENT, "stat", path)
	}
	if err != nil {
		return nil, err
	}

	return &resolver.Stat{Mode: data.FileMode(mode), Size: size}, nil
}

func (sr *SQLiteResolver) ReadAll(ctx context.Context, path string) ([]byte, error) {
	var mode int64
	var content []byte
	err := sr.db.QueryRowContext(ctx,
		"SELECT mode, content FROM layerfs_entries WHERE path = ?",
		normalize(path)).Scan(&mode, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, data.NewPathError(data.ENOENT, "read", path)
	}
	if err != nil {
		return nil, err
	}

	if data.FileMode(mode).IsDir() {
		return nil, data.NewPathError(data.EISDIR, "read", path)
	}
	if content == nil {
		content = []byte{}
	}
	return content, nil
}
