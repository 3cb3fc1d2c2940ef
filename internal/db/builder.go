package db

import (
	"strings"

	"dbizzy/internal/model"
	"dbizzy/internal/resolve"
)

// Builder collects catalog rows into the same model the DDL parser
// produces: columns are named "ident type", primary keys are declared by
// full column name and every foreign key is stored with its mirror.
type Builder struct {
	tables []model.Table
	index  map[string]int
	pks    []model.PrimaryKey
	fks    []model.ForeignKey
}

func NewBuilder() *Builder {
	return &Builder{index: map[string]int{}}
}

// TableName qualifies name with its schema unless the schema is the
// dialect's default one.
func TableName(schema, name string) string {
	switch strings.ToLower(schema) {
	case "", "public", "dbo", "main":
		return name
	}
	return schema + "." + name
}

// Table adds an empty table. Adding a known table again is a no-op.
func (b *Builder) Table(name string) {
	if _, ok := b.index[name]; ok {
		return
	}
	b.index[name] = len(b.tables)
	b.tables = append(b.tables, model.Table{Name: name})
}

// Column appends a column to table, adding the table if needed.
func (b *Builder) Column(table, name, typ string) {
	b.Table(table)
	t := &b.tables[b.index[table]]
	t.Columns = append(t.Columns, model.Column{
		Name:      strings.TrimSpace(name + " " + typ),
		TableName: table,
	})
}

// PrimaryKey declares column of table as part of its primary key.
func (b *Builder) PrimaryKey(table, column string) {
	b.pks = append(b.pks, model.PrimaryKey{
		KeyName:   b.fullName(table, column),
		TableName: table,
	})
}

// PrimaryKeyOf returns the first declared primary key column of table,
// without its type.
func (b *Builder) PrimaryKeyOf(table string) string {
	for _, pk := range b.pks {
		if pk.TableName == table {
			return model.FirstToken(pk.KeyName)
		}
	}
	return ""
}

// ForeignKey records that column of table references refColumn of refTable.
func (b *Builder) ForeignKey(table, column, refTable, refColumn string) {
	origin := model.ForeignKey{
		SourceColumnName: b.fullName(table, column),
		SourceTableName:  table,
		TargetColumnName: refColumn,
		TargetTableName:  refTable,
	}
	b.fks = append(b.fks, origin, origin.Mirror())
}

// Schema resolves the collected keys and returns the result.
func (b *Builder) Schema() model.Schema {
	resolve.Keys(b.tables, b.pks, b.fks)
	return model.Schema{Tables: b.tables, ForeignKeys: b.fks}
}

// fullName returns the stored name of the column whose identifier is
// column, or column itself when the table has no such column.
func (b *Builder) fullName(table, column string) string {
	i, ok := b.index[table]
	if !ok {
		return column
	}
	for _, c := range b.tables[i].Columns {
		if c.Ident() == column {
			return c.Name
		}
	}
	return column
}
