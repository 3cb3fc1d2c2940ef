package extractors

import (
	"context"
	"database/sql"

	"dbizzy/internal/db"
	"dbizzy/internal/model"
)

// mssqlExtractor implements Extractor for Microsoft SQL Server.
type mssqlExtractor struct{}

var mssqlCatalog = catalog{
	tables: `
        SELECT s.name AS schema_name, t.name AS table_name
        FROM sys.schemas AS s
        JOIN sys.tables AS t
          ON s.schema_id = t.schema_id
        ORDER BY s.name, t.name`,
	columns: `
        SELECT COLUMN_NAME, DATA_TYPE
        FROM INFORMATION_SCHEMA.COLUMNS
        WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
        ORDER BY ORDINAL_POSITION`,
	primary: `
        SELECT k.COLUMN_NAME
        FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS t
        JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
          ON t.CONSTRAINT_NAME = k.CONSTRAINT_NAME
         AND t.TABLE_SCHEMA = k.TABLE_SCHEMA
        WHERE t.CONSTRAINT_TYPE = 'PRIMARY KEY' AND k.TABLE_SCHEMA = @p1 AND k.TABLE_NAME = @p2
        ORDER BY k.ORDINAL_POSITION`,
	foreign: `
        SELECT
            OBJECT_SCHEMA_NAME(fkc.parent_object_id),
            OBJECT_NAME(fkc.parent_object_id),
            c.name,
            OBJECT_SCHEMA_NAME(fkc.referenced_object_id),
            OBJECT_NAME(fkc.referenced_object_id),
            rc.name
        FROM sys.foreign_keys fk
        JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
        JOIN sys.columns c ON fkc.parent_object_id = c.object_id AND fkc.parent_column_id = c.column_id
        JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
        ORDER BY 1, 2, fk.name, fkc.constraint_column_id`,
}

// This is the extractor for Microsoft SQL Server
func (mssqlExtractor) Extract(ctx context.Context, dbConn *sql.DB) (model.Schema, error) {
	return mssqlCatalog.extract(ctx, dbConn)
}

func init() {
	db.Register("sqlserver", mssqlExtractor{})
	db.Register("mssql", mssqlExtractor{})
}
