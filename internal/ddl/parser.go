// Package ddl recovers tables, columns and keys from CREATE TABLE and
// ALTER TABLE ... ADD CONSTRAINT text.
//
// The parser is line oriented and fail-open: every input line is classified
// on its own, and a line it cannot make sense of is skipped rather than
// aborting the parse. Two dialects are understood, MySQL style inline
// constraints and SQL Server style bracketed or multi-line constraints.
package ddl

import (
	"strings"

	"dbizzy/internal/model"
	"dbizzy/internal/resolve"
)

// Stats are diagnostic counters for one parse.
type Stats struct {
	Lines         int `json:"lines"`
	TablesCreated int `json:"tables_created"`
	LinesSkipped  int `json:"lines_skipped"`
}

// Result is everything produced by one Parse call.
type Result struct {
	Schema      model.Schema       `json:"schema"`
	PrimaryKeys []model.PrimaryKey `json:"primary_keys"`
	Stats       Stats              `json:"stats"`

	blank bool
}

// Empty reports that the input had content but no table came out of it.
func (r Result) Empty() bool {
	return !r.blank && len(r.Schema.Tables) == 0
}

// parser holds the working collections of a single parse.
type parser struct {
	lines       []string
	tables      []model.Table
	foreignKeys []model.ForeignKey
	primaryKeys []model.PrimaryKey
	current     *model.Table
	stats       Stats
}

// Parse turns DDL text into a resolved schema. It never fails; lines that
// are not understood are skipped.
func Parse(text string) Result {
	p := &parser{lines: strings.Split(text, "\n")}
	p.stats.Lines = len(p.lines)
	p.scan()
	resolve.Keys(p.tables, p.primaryKeys, p.foreignKeys)

	return Result{
		Schema: model.Schema{
			Tables:      p.tables,
			ForeignKeys: p.foreignKeys,
		},
		PrimaryKeys: p.primaryKeys,
		Stats:       p.stats,
		blank:       strings.TrimSpace(text) == "",
	}
}

func (p *parser) scan() {
	for i := 0; i < len(p.lines); i++ {
		line := strings.TrimSpace(p.lines[i])
		prefix := strings.ToLower(head(line, 12))

		if p.current != nil && strings.Contains(line, ");") {
			p.closeTable()
		}

		switch {
		case prefix == "create table":
			p.openTable(TableName(line[12:]))
		case line == "ALTER TABLE":
			table, constraint := alterTableParts(p.lines, i)
			p.alterTable(table, constraint)
			i += 3
		case p.current != nil && line != "(" && prefix != "alter table ":
			p.property(line, i)
		}
	}
}

func (p *parser) openTable(name string) {
	p.current = &model.Table{Name: name}
	p.stats.TablesCreated++
}

func (p *parser) closeTable() {
	p.tables = append(p.tables, *p.current)
	p.current = nil
}

// property handles one line inside an open CREATE TABLE block.
func (p *parser) property(line string, i int) {
	name := strings.TrimSuffix(line, ",")
	if strings.ToLower(head(name, 10)) == "constraint" {
		name = stripConstraintName(name)
	}

	kind := classify(name, line)
	if kind == plainColumn {
		if name == "" || name == ");" || skippable(name) {
			p.stats.LinesSkipped++
			return
		}
		p.addColumn(model.Column{Name: strings.ReplaceAll(name, `"`, "")})
		return
	}

	switch kind {
	case mysqlPrimary:
		p.mysqlPrimaryKey(name, p.current)
	case sqlServerPrimary, sqlServerBoth:
		if strings.Contains(name, "PRIMARY KEY") && !strings.Contains(name, "CLUSTERED") {
			p.sqlServerPrimaryKey(name, kind)
		}
	}

	switch kind {
	case mysqlForeign:
		p.mysqlForeignKey(name, p.current)
	case sqlServerForeign, sqlServerBoth:
		row := name
		if !strings.Contains(name, "REFERENCES") {
			row = joinReferences(p.current.Name, name, lookahead(p.lines, i, 1))
		}
		p.sqlServerForeignKey(row, name, kind)
	}
}

// alterTable applies an ALTER TABLE ... ADD CONSTRAINT body to a table that
// has already been closed.
func (p *parser) alterTable(tableLine, constraint string) {
	t := p.findTable(TableName(tableLine))
	if t == nil {
		p.stats.LinesSkipped++
		return
	}

	constraint = strings.TrimSpace(constraint)
	if i := strings.Index(constraint, "FOREIGN KEY"); i != -1 {
		p.mysqlForeignKey(constraint[i:len(constraint)-1], t)
	} else if i := strings.Index(constraint, "PRIMARY KEY"); i != -1 {
		p.mysqlPrimaryKey(constraint[i:len(constraint)-1], t)
	} else {
		p.stats.LinesSkipped++
	}
}

// findTable returns the last closed table called name.
func (p *parser) findTable(name string) *model.Table {
	var found *model.Table
	for i := range p.tables {
		if p.tables[i].Name == name {
			found = &p.tables[i]
		}
	}
	return found
}

func (p *parser) addColumn(c model.Column) {
	c.TableName = p.current.Name
	p.current.Columns = append(p.current.Columns, c)
}

// relate records a relationship as its origin and destination pair.
func (p *parser) relate(origin model.ForeignKey) {
	origin.IsDestinationCopy = false
	p.foreignKeys = append(p.foreignKeys, origin, origin.Mirror())
}

// head returns at most the first n bytes of s.
func head(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// tail returns s without its first n bytes.
func tail(s string, n int) string {
	if len(s) < n {
		return ""
	}
	return s[n:]
}
