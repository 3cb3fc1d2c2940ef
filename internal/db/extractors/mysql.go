package extractors

import (
	"context"
	"database/sql"

	"dbizzy/internal/db"
	"dbizzy/internal/model"
)

// myExtractor implements Extractor for MySQL (information_schema).
type myExtractor struct{}

var myCatalog = catalog{
	tables: `
        SELECT table_schema, table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema NOT IN ('mysql','information_schema','performance_schema','sys')
        ORDER BY table_schema, table_name`,
	columns: `
        SELECT column_name, column_type
        FROM information_schema.columns
        WHERE table_schema = ? AND table_name = ?
        ORDER BY ordinal_position`,
	primary: `
        SELECT k.column_name
        FROM information_schema.key_column_usage k
        JOIN information_schema.table_constraints tc
          ON k.constraint_name = tc.constraint_name
         AND k.table_schema = tc.table_schema
         AND k.table_name = tc.table_name
        WHERE tc.constraint_type = 'PRIMARY KEY' AND k.table_schema = ? AND k.table_name = ?
        ORDER BY k.ordinal_position`,
	foreign: `
        SELECT table_schema, table_name, column_name,
               referenced_table_schema, referenced_table_name, referenced_column_name
        FROM information_schema.key_column_usage
        WHERE referenced_table_name IS NOT NULL
          AND table_schema NOT IN ('mysql','information_schema','performance_schema','sys')
        ORDER BY table_schema, table_name, constraint_name, ordinal_position`,
}

// This is the extractor for MySQL
func (myExtractor) Extract(ctx context.Context, dbConn *sql.DB) (model.Schema, error) {
	return myCatalog.extract(ctx, dbConn)
}

func init() {
	db.Register("mysql", myExtractor{})
	db.Register("mariadb", myExtractor{})
}
