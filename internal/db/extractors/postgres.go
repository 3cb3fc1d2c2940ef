package extractors

import (
	"context"
	"database/sql"

	"dbizzy/internal/db"
	"dbizzy/internal/model"
)

// pgExtractor implements Extractor using information_schema + pg_catalog queries.
type pgExtractor struct{}

var pgCatalog = catalog{
	tables: `
        SELECT table_schema, table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema NOT IN ('pg_catalog','information_schema','pg_toast')
        ORDER BY table_schema, table_name`,
	columns: `
        SELECT column_name, data_type
        FROM information_schema.columns
        WHERE table_schema = $1 AND table_name = $2
        ORDER BY ordinal_position`,
	primary: `
        SELECT a.attname
        FROM pg_index i
        JOIN pg_class c ON i.indrelid = c.oid
        JOIN pg_namespace ns ON c.relnamespace = ns.oid
        JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey)
        WHERE ns.nspname = $1 AND c.relname = $2 AND i.indisprimary`,
	foreign: `
        SELECT tc.table_schema, tc.table_name, kcu.column_name,
               rkcu.table_schema, rkcu.table_name, rkcu.column_name
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
          ON tc.constraint_name = kcu.constraint_name
         AND tc.constraint_schema = kcu.constraint_schema
        JOIN information_schema.referential_constraints rc
          ON tc.constraint_name = rc.constraint_name
         AND tc.constraint_schema = rc.constraint_schema
        JOIN information_schema.key_column_usage rkcu
          ON rc.unique_constraint_name = rkcu.constraint_name
         AND rc.unique_constraint_schema = rkcu.constraint_schema
         AND kcu.ordinal_position = rkcu.ordinal_position
        WHERE tc.constraint_type = 'FOREIGN KEY'
          AND tc.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
        ORDER BY tc.table_schema, tc.table_name, tc.constraint_name, kcu.ordinal_position`,
}

// This is the extractor for PostgreSQL
func (pgExtractor) Extract(ctx context.Context, dbConn *sql.DB) (model.Schema, error) {
	return pgCatalog.extract(ctx, dbConn)
}

func init() {
	db.Register("postgres", pgExtractor{})
	db.Register("postgresql", pgExtractor{})
}
