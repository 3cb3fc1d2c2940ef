package ddl

import "strings"

// keyKind tells which extractor handles a line inside a CREATE TABLE block.
type keyKind int

const (
	plainColumn keyKind = iota
	mysqlPrimary
	mysqlForeign
	sqlServerPrimary
	sqlServerForeign
	sqlServerBoth
)

func (k keyKind) String() string {
	switch k {
	case mysqlPrimary:
		return "primary key"
	case mysqlForeign:
		return "foreign key"
	case sqlServerPrimary:
		return "SQLServer primary key"
	case sqlServerForeign:
		return "SQLServer foreign key"
	case sqlServerBoth:
		return "SQLServer both"
	}
	return "column"
}

// classify looks at the start of the (constraint-stripped) name for MySQL
// style key clauses, then at the whole raw line for SQL Server style inline
// keys.
func classify(name, raw string) keyKind {
	switch strings.ToLower(head(name, 11)) {
	case "primary key":
		return mysqlPrimary
	case "foreign key":
		return mysqlForeign
	}

	pk := strings.Contains(raw, "PRIMARY KEY")
	fk := strings.Contains(raw, "FOREIGN KEY")
	switch {
	case pk && fk:
		return sqlServerBoth
	case pk:
		return sqlServerPrimary
	case fk:
		return sqlServerForeign
	}
	return plainColumn
}

// stripConstraintName drops a leading "CONSTRAINT name" so the line starts
// at its PRIMARY KEY or FOREIGN KEY clause.
func stripConstraintName(name string) string {
	if i := strings.Index(name, "PRIMARY KEY"); i != -1 {
		return strings.ReplaceAll(name[i:], `"`, "")
	}
	if i := strings.Index(name, "FOREIGN KEY"); i != -1 {
		return strings.ReplaceAll(name[i:], `"`, "")
	}
	return name
}

// skipWords mark index, option and batch lines that never declare a column.
var skipWords = []string{
	"ASC",
	"DESC",
	"EXEC",
	"WITH",
	"ON",
	"ALTER",
	"/*",
	"CONSTRAIN",
	"SET",
	"NONCLUSTERED",
	"GO",
	"REFERENCES",
	"OIDS",
}

func skippable(line string) bool {
	for _, w := range skipWords {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}

// TableName strips SQL Server owner and bracket decorations from the text
// following CREATE TABLE, e.g. "[dbo].[Users](" becomes "Users".
func TableName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.Replace(name, "[dbo].[", "", 1)
	name = strings.Replace(name, "](", "", 1)
	name = strings.Replace(name, "].[", ".", 1)
	name = strings.Replace(name, "[", "", 1)
	name = strings.Replace(name, " [", "", 1)
	name = strings.Replace(name, "] ", "", 1)
	name = strings.TrimSuffix(name, "]")
	name = strings.TrimSuffix(name, ")")
	name = strings.TrimSuffix(name, "(")
	name = strings.Replace(name, " ", "", 1)
	return strings.TrimSpace(name)
}
