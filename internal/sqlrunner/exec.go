package sqlrunner

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ResultSet holds the rows of one row-returning statement.
type ResultSet struct {
	Columns []string `json:"columns"`
	Values  [][]any  `json:"values"`
}

// Exec runs every statement of script in order and returns one ResultSet
// per row-returning statement. The first failing statement stops the run;
// the results gathered before it are returned with the error.
func (d *DB) Exec(ctx context.Context, script string) ([]ResultSet, error) {
	var results []ResultSet
	for _, stmt := range splitStatements(script) {
		if !returnsRows(stmt) {
			if _, err := d.db.ExecContext(ctx, stmt); err != nil {
				return results, fmt.Errorf("error in %q: %w", stmt, err)
			}
			continue
		}
		rs, err := d.query(ctx, stmt)
		if err != nil {
			return results, fmt.Errorf("error in %q: %w", stmt, err)
		}
		if len(rs.Columns) > 0 {
			results = append(results, rs)
		}
	}
	return results, nil
}

func (d *DB) query(ctx context.Context, stmt string) (ResultSet, error) {
	rows, err := d.db.QueryContext(ctx, stmt)
	if err != nil {
		return ResultSet{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return ResultSet{}, err
	}
	rs := ResultSet{Columns: cols, Values: [][]any{}}
	for rows.Next() {
		row := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return ResultSet{}, err
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok && utf8.Valid(b) {
				row[i] = string(b)
			}
		}
		rs.Values = append(rs.Values, row)
	}
	return rs, rows.Err()
}

var rowKeywords = map[string]bool{
	"SELECT":  true,
	"PRAGMA":  true,
	"WITH":    true,
	"VALUES":  true,
	"EXPLAIN": true,
}

// returnsRows reports whether stmt can produce rows.
func returnsRows(stmt string) bool {
	words := strings.Fields(strings.ToUpper(stripComments(stmt)))
	if len(words) == 0 {
		return false
	}
	if rowKeywords[strings.TrimLeft(words[0], "(")] {
		return true
	}
	for _, w := range words {
		if w == "RETURNING" {
			return true
		}
	}
	return false
}
