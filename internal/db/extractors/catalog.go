package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"dbizzy/internal/db"
	"dbizzy/internal/logger"
	"dbizzy/internal/model"
)

// catalog holds the queries one information-schema style dialect needs.
//
//	tables:  schema, table
//	columns: column, type            (args: schema, table)
//	primary: column                  (args: schema, table)
//	foreign: schema, table, column, ref schema, ref table, ref column
//
// The foreign query returns one row per column pair.
type catalog struct {
	tables  string
	columns string
	primary string
	foreign string
}

type catalogTable struct {
	schema, name string
}

// extract runs the catalog queries. Failing to list tables or columns is an
// error; key queries that fail are logged and skipped.
func (q catalog) extract(ctx context.Context, dbConn *sql.DB) (model.Schema, error) {
	b := db.NewBuilder()

	tr, err := dbConn.QueryContext(ctx, q.tables)
	if err != nil {
		return model.Schema{}, fmt.Errorf("query tables: %w", err)
	}
	var tables []catalogTable
	for tr.Next() {
		var t catalogTable
		if err := tr.Scan(&t.schema, &t.name); err != nil {
			tr.Close()
			return model.Schema{}, fmt.Errorf("scan table row: %w", err)
		}
		tables = append(tables, t)
	}
	tr.Close()

	for _, t := range tables {
		name := db.TableName(t.schema, t.name)
		b.Table(name)

		cr, err := dbConn.QueryContext(ctx, q.columns, t.schema, t.name)
		if err != nil {
			return model.Schema{}, fmt.Errorf("query columns for %s.%s: %w", t.schema, t.name, err)
		}
		for cr.Next() {
			var col, typ string
			if err := cr.Scan(&col, &typ); err != nil {
				cr.Close()
				return model.Schema{}, fmt.Errorf("scan column for %s.%s: %w", t.schema, t.name, err)
			}
			b.Column(name, col, typ)
		}
		cr.Close()

		pkr, err := dbConn.QueryContext(ctx, q.primary, t.schema, t.name)
		if err != nil {
			logger.Error("query primary key: %v", err)
			continue
		}
		for pkr.Next() {
			var pkcol string
			if err := pkr.Scan(&pkcol); err != nil {
				logger.Error("scan primary key: %v", err)
				continue
			}
			b.PrimaryKey(name, pkcol)
		}
		pkr.Close()
	}

	fkr, err := dbConn.QueryContext(ctx, q.foreign)
	if err != nil {
		logger.Error("query foreign key: %v", err)
		return b.Schema(), nil
	}
	defer fkr.Close()
	for fkr.Next() {
		var from, to catalogTable
		var fromCol, toCol string
		if err := fkr.Scan(&from.schema, &from.name, &fromCol, &to.schema, &to.name, &toCol); err != nil {
			logger.Error("scan foreign key: %v", err)
			continue
		}
		b.ForeignKey(db.TableName(from.schema, from.name), fromCol, db.TableName(to.schema, to.name), toCol)
	}

	return b.Schema(), nil
}
