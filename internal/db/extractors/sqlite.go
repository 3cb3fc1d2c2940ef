package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"dbizzy/internal/db"
	"dbizzy/internal/logger"
	"dbizzy/internal/model"
)

// sqliteExtractor implements Extractor for SQLite.
type sqliteExtractor struct{}

type sqliteForeignKey struct {
	table, column, refTable string
	refColumn               sql.NullString
}

// This is the extractor for SQLite
func (sqliteExtractor) Extract(ctx context.Context, dbConn *sql.DB) (model.Schema, error) {
	b := db.NewBuilder()

	tr, err := dbConn.QueryContext(ctx, `
	    SELECT name
	    FROM sqlite_master
	    WHERE type = 'table'
	      AND name NOT LIKE 'sqlite_%'
	    ORDER BY name`)
	if err != nil {
		return model.Schema{}, fmt.Errorf("query tables: %w", err)
	}
	var tables []string
	for tr.Next() {
		var name string
		if err := tr.Scan(&name); err != nil {
			tr.Close()
			return model.Schema{}, fmt.Errorf("scan table row: %w", err)
		}
		tables = append(tables, name)
	}
	tr.Close()

	var fks []sqliteForeignKey
	for _, name := range tables {
		b.Table(name)

		pr, err := dbConn.QueryContext(ctx, `
		    SELECT name, type, pk
		    FROM pragma_table_info(?)
		    ORDER BY cid`, name)
		if err != nil {
			return model.Schema{}, fmt.Errorf("query columns for %s: %w", name, err)
		}
		var pks []string
		for pr.Next() {
			var col, ctype string
			var pk int
			if err := pr.Scan(&col, &ctype, &pk); err != nil {
				pr.Close()
				return model.Schema{}, fmt.Errorf("scan column for %s: %w", name, err)
			}
			b.Column(name, col, ctype)
			if pk > 0 {
				pks = append(pks, col)
			}
		}
		pr.Close()
		for _, col := range pks {
			b.PrimaryKey(name, col)
		}

		fkRows, err := dbConn.QueryContext(ctx, `
		    SELECT "from", "table", "to"
		    FROM pragma_foreign_key_list(?)
		    ORDER BY id, seq`, name)
		if err != nil {
			logger.Error("query foreign key: %v", err)
			continue
		}
		for fkRows.Next() {
			fk := sqliteForeignKey{table: name}
			if err := fkRows.Scan(&fk.column, &fk.refTable, &fk.refColumn); err != nil {
				logger.Error("scan foreign key: %v", err)
				continue
			}
			fks = append(fks, fk)
		}
		fkRows.Close()
	}

	// "REFERENCES t" without a column list points at t's primary key, which
	// is only known once every table has been read.
	for _, fk := range fks {
		ref := fk.refColumn.String
		if !fk.refColumn.Valid || ref == "" {
			ref = b.PrimaryKeyOf(fk.refTable)
		}
		b.ForeignKey(fk.table, fk.column, fk.refTable, ref)
	}

	return b.Schema(), nil
}

func init() {
	db.Register("sqlite3", sqliteExtractor{})
	db.Register("sqlite", sqliteExtractor{})
}
