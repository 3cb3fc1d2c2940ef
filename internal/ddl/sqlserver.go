package ddl

import (
	"regexp"
	"strings"

	"dbizzy/internal/model"
)

var (
	sqlServerRef = regexp.MustCompile(`REFERENCES\s(\w+)\s?\((\w*)\)`)

	// sqlServerDecor turns "[dbo].[Persons] ([PersonID])" into
	// "Persons (PersonID)".
	sqlServerDecor = strings.NewReplacer("[dbo].", "", "[", "", "]", "")
)

// sqlServerPrimaryKey handles a column line carrying an inline PRIMARY KEY.
// For lines that are also foreign keys the column is added by
// sqlServerForeignKey instead.
func (p *parser) sqlServerPrimaryKey(name string, kind keyKind) {
	key := strings.Replace(name, "PRIMARY KEY (", "", 1)
	key = strings.Replace(key, ")", "", 1)
	key = strings.Replace(key, "PRIMARY KEY", "", 1)
	key = strings.TrimSpace(strings.ReplaceAll(key, `"`, ""))

	p.primaryKeys = append(p.primaryKeys, model.PrimaryKey{
		KeyName:   key,
		TableName: p.current.Name,
	})
	if kind != sqlServerBoth {
		p.addColumn(model.Column{Name: key, IsPrimaryKey: true})
	}
}

// sqlServerForeignKey handles a column line carrying an inline FOREIGN KEY.
// row is the line, rebuilt with its REFERENCES line when that was split off;
// the column name is taken from line itself. The column is kept even when
// the reference cannot be read.
func (p *parser) sqlServerForeignKey(row, line string, kind keyKind) {
	name := keyColumnName(line)
	m := sqlServerRef.FindStringSubmatch(sqlServerDecor.Replace(row))
	if m == nil {
		p.stats.LinesSkipped++
		p.addColumn(model.Column{Name: name, IsPrimaryKey: kind == sqlServerBoth})
		return
	}

	p.relate(model.ForeignKey{
		SourceColumnName: name,
		SourceTableName:  p.current.Name,
		TargetColumnName: m[2],
		TargetTableName:  m[1],
	})
	p.addColumn(model.Column{Name: name, IsPrimaryKey: kind == sqlServerBoth})
}

// keyColumnName returns the text before "foreign key", and before
// "primary key" when that comes first, ignoring case.
func keyColumnName(line string) string {
	name := line
	if i := indexFold(line, "foreign key"); i != -1 {
		name = line[:i]
	}
	if i := indexFold(line, "primary key"); i != -1 && i < len(name) {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// indexFold is strings.Index with ASCII case folding; offsets refer to s.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}
