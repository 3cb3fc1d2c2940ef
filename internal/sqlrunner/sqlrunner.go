// Package sqlrunner is the in-process SQLite engine behind the query panel.
package sqlrunner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	_ "modernc.org/sqlite" // register the sqlite driver
)

const driverName = "sqlite"

// DB wraps a *sql.DB backed by modernc.org/sqlite.
type DB struct {
	db *sql.DB

	// working copy of an opened file, removed on Close
	tmp string
}

func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps an in-memory database alive between statements.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory opens an empty in-memory database.
func OpenMemory() (*DB, error) {
	db, err := open(":memory:")
	if err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

// OpenFile opens a private copy of the database file at path. Statements
// run against the copy, so the file itself is never modified.
func OpenFile(path string) (*DB, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	db, err := OpenReader(in)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

// OpenReader opens a database from the contents of a database file, such
// as an upload.
func OpenReader(r io.Reader) (*DB, error) {
	tmp, err := copyToTemp(r)
	if err != nil {
		return nil, err
	}
	db, err := open(tmp)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	return &DB{db: db, tmp: tmp}, nil
}

// Tables lists the user tables, in name order.
func (d *DB) Tables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
	    SELECT name
	    FROM sqlite_master
	    WHERE type = 'table'
	      AND name NOT LIKE 'sqlite_%'
	    ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Export writes the current database to path, replacing any file there,
// and returns the size of the written file.
func (d *DB) Export(ctx context.Context, path string) (int64, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}
	if _, err := d.db.ExecContext(ctx, "VACUUM INTO "+quoteString(path)); err != nil {
		return 0, fmt.Errorf("export to %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close closes the database and removes its working copy.
func (d *DB) Close() error {
	err := d.db.Close()
	if d.tmp != "" {
		if rerr := os.Remove(d.tmp); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

func copyToTemp(in io.Reader) (string, error) {
	out, err := os.CreateTemp("", "dbizzy-*.db")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

// quoteString quotes a SQLite string literal.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
