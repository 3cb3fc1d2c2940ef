package model

import "strings"

// Column represents one row of a table in the diagram. Name keeps whatever
// followed the column identifier on its DDL line (type, NOT NULL, ...).
type Column struct {
	Name         string       `json:"name"`
	TableName    string       `json:"table_name"`
	IsPrimaryKey bool         `json:"is_primary_key"`
	IsForeignKey bool         `json:"is_foreign_key"`
	References   []ForeignKey `json:"references,omitempty"`
}

// Ident returns the first whitespace-delimited token of the column name.
func (c Column) Ident() string {
	return FirstToken(c.Name)
}

// Badge returns the key label shown in front of the column.
func (c Column) Badge() string {
	switch {
	case c.IsPrimaryKey && c.IsForeignKey:
		return "PK | FK"
	case c.IsForeignKey:
		return "FK"
	case c.IsPrimaryKey:
		return "PK"
	}
	return ""
}

// PrimaryKey is a primary key declaration collected while parsing.
type PrimaryKey struct {
	KeyName   string `json:"key_name"`
	TableName string `json:"table_name"`
}

// ForeignKey represents one end of a foreign key relationship.
// Every relationship is stored twice: the origin record, and a destination
// copy with source and target swapped.
type ForeignKey struct {
	SourceColumnName  string `json:"source_column"`
	SourceTableName   string `json:"source_table"`
	TargetColumnName  string `json:"target_column"`
	TargetTableName   string `json:"target_table"`
	IsDestinationCopy bool   `json:"is_destination_copy"`
}

// Mirror returns the destination copy of an origin record.
func (fk ForeignKey) Mirror() ForeignKey {
	return ForeignKey{
		SourceColumnName:  fk.TargetColumnName,
		SourceTableName:   fk.TargetTableName,
		TargetColumnName:  fk.SourceColumnName,
		TargetTableName:   fk.SourceTableName,
		IsDestinationCopy: !fk.IsDestinationCopy,
	}
}

// Table represents a table and its columns in declaration order.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is the full model handed to the graph builder.
type Schema struct {
	Tables      []Table      `json:"tables"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// Origins returns the origin foreign key records in declaration order.
func (s Schema) Origins() []ForeignKey {
	var out []ForeignKey
	for _, fk := range s.ForeignKeys {
		if !fk.IsDestinationCopy {
			out = append(out, fk)
		}
	}
	return out
}

// FirstToken returns the first whitespace-delimited token of s.
func FirstToken(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}
