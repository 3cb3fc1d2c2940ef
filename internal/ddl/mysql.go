package ddl

import (
	"regexp"
	"strings"

	"dbizzy/internal/model"
)

var (
	mysqlKeyColumn = regexp.MustCompile(`FOREIGN\sKEY\s\((\w+)\)\sREFERENCES\s`)
	mysqlRefTable  = regexp.MustCompile(`REFERENCES\s(\w+)\(`)
	mysqlRefColumn = regexp.MustCompile(`REFERENCES\s\w+\((\w+)\)`)
	mysqlKeyPrefix = len("PRIMARY KEY (")
)

// mysqlPrimaryKey handles "PRIMARY KEY (col)" and flags the column of t
// whose first token is col.
func (p *parser) mysqlPrimaryKey(body string, t *model.Table) {
	key := tail(body, mysqlKeyPrefix)
	key = strings.Replace(key, ")", "", 1)
	key = strings.ReplaceAll(key, `"`, "")

	for j := range t.Columns {
		if t.Columns[j].Ident() == key {
			t.Columns[j].IsPrimaryKey = true
			p.primaryKeys = append(p.primaryKeys, model.PrimaryKey{
				KeyName:   t.Columns[j].Name,
				TableName: t.Name,
			})
		}
	}
}

// mysqlForeignKey handles "FOREIGN KEY (col) REFERENCES other(col2)". The
// matching column of t is flagged and its full name, type included, becomes
// the source of the relationship.
func (p *parser) mysqlForeignKey(body string, t *model.Table) {
	body = strings.ReplaceAll(body, `"`, "")

	col := mysqlKeyColumn.FindStringSubmatch(body)
	table := mysqlRefTable.FindStringSubmatch(body)
	ref := mysqlRefColumn.FindStringSubmatch(body)
	if col == nil || table == nil || ref == nil {
		p.stats.LinesSkipped++
		return
	}

	source := col[1]
	for j := range t.Columns {
		if t.Columns[j].Ident() == source {
			t.Columns[j].IsForeignKey = true
			source = t.Columns[j].Name
		}
	}

	p.relate(model.ForeignKey{
		SourceColumnName: source,
		SourceTableName:  t.Name,
		TargetColumnName: ref[1],
		TargetTableName:  table[1],
	})
}
