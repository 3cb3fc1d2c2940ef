// Package resolve flags primary and foreign key columns from the key
// declarations collected by a schema source.
package resolve

import "dbizzy/internal/model"

// Keys marks the columns named by the primary and foreign key declarations.
// Tables are updated in place. Matching is exact and case sensitive; a
// declaration that matches nothing is dropped and one that matches several
// columns updates all of them.
func Keys(tables []model.Table, pks []model.PrimaryKey, fks []model.ForeignKey) {
	PrimaryKeys(tables, pks)
	ForeignKeys(tables, fks)
}

// PrimaryKeys sets IsPrimaryKey on every column whose table and name equal a
// declaration's table and key name.
func PrimaryKeys(tables []model.Table, pks []model.PrimaryKey) {
	for _, pk := range pks {
		for i := range tables {
			t := &tables[i]
			if t.Name != pk.TableName {
				continue
			}
			for j := range t.Columns {
				if t.Columns[j].Name == pk.KeyName {
					t.Columns[j].IsPrimaryKey = true
				}
			}
		}
	}
}

// ForeignKeys sets IsForeignKey on every column a record targets and appends
// the record to that column's references.
func ForeignKeys(tables []model.Table, fks []model.ForeignKey) {
	for _, fk := range fks {
		for i := range tables {
			t := &tables[i]
			if t.Name != fk.TargetTableName {
				continue
			}
			for j := range t.Columns {
				if t.Columns[j].Name == fk.TargetColumnName {
					t.Columns[j].IsForeignKey = true
					t.Columns[j].References = append(t.Columns[j].References, fk)
				}
			}
		}
	}
}
