//go:build oracle
// +build oracle

package extractors

import (
	"context"
	"database/sql"

	_ "github.com/godror/godror"

	"dbizzy/internal/db"
	"dbizzy/internal/model"
)

// oracleExtractor implements Extractor for Oracle.
type oracleExtractor struct{}

var oracleCatalog = catalog{
	tables: `
        SELECT atab.owner, atab.table_name
        FROM all_users ausr
        JOIN all_tables atab
          ON ausr.username = atab.owner
        WHERE ausr.oracle_maintained = 'N'
        ORDER BY atab.owner, atab.table_name`,
	columns: `
        SELECT column_name, data_type
        FROM all_tab_columns
        WHERE owner = :1 AND table_name = :2
        ORDER BY column_id`,
	primary: `
        SELECT acc.column_name
        FROM all_cons_columns acc
        JOIN all_constraints ac ON acc.owner = ac.owner AND acc.constraint_name = ac.constraint_name
        WHERE ac.constraint_type = 'P' AND acc.owner = :1 AND acc.table_name = :2
        ORDER BY acc.position`,
	foreign: `
        SELECT a.owner, a.table_name, acc.column_name,
               rcc.owner, rcc.table_name, rcc.column_name
        FROM all_users ausr
        JOIN all_constraints a
          ON ausr.username = a.owner
        JOIN all_cons_columns acc
          ON a.owner = acc.owner
         AND a.constraint_name = acc.constraint_name
        JOIN all_cons_columns rcc
          ON a.r_owner = rcc.owner
         AND a.r_constraint_name = rcc.constraint_name
         AND nvl(acc.position, 0) = nvl(rcc.position, 0)
        WHERE a.constraint_type = 'R'
          AND ausr.oracle_maintained = 'N'
        ORDER BY a.owner, a.table_name, a.constraint_name, acc.position`,
}

// This is the extractor for Oracle
func (oracleExtractor) Extract(ctx context.Context, dbConn *sql.DB) (model.Schema, error) {
	return oracleCatalog.extract(ctx, dbConn)
}

func init() {
	db.Register("godror", oracleExtractor{})
	db.Register("oracle", oracleExtractor{})
}
