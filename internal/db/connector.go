package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"dbizzy/internal/model"
	"dbizzy/pkg/config"
)

type Extractor interface {

	// Extract reads the catalog of a connected database and returns the
	// tables and keys to draw
	Extract(ctx context.Context, db *sql.DB) (model.Schema, error)
}

var dialects = map[string]Extractor{}

// Register makes an Extractor available under name.
func Register(name string, e Extractor) {
	dialects[strings.ToLower(name)] = e
}

// listRegistered returns the registered dialect keys, sorted.
func listRegistered() []string {
	keys := make([]string, 0, len(dialects))
	for k := range dialects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConnectAndExtract connects to the database and extracts its schema. The
// timeout bounds both the connection check and the extraction.
func ConnectAndExtract(ctx context.Context, driver, dsn string, timeoutSec int) (model.Schema, error) {
	driver = config.NormalizeDriver(driver)
	extractor, ok := dialects[driver]
	if !ok {
		return model.Schema{}, fmt.Errorf("dialect not registered: %q (available: %v)", driver, listRegistered())
	}
	dbConn, err := sql.Open(driver, dsn)
	if err != nil {
		return model.Schema{}, err
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		return model.Schema{}, fmt.Errorf("ping %s: %w", driver, err)
	}
	return extractor.Extract(ctx, dbConn)
}

// RegisteredDialects is a helper that allows main to print registered dialects
func RegisteredDialects() []string {
	return listRegistered()
}
