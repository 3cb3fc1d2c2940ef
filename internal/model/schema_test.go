package model

import (
	"reflect"
	"testing"
)

func TestBadge(t *testing.T) {
	var tests = []struct {
		name  string
		col   Column
		badge string
	}{
		{"plain", Column{Name: "name text"}, ""},
		{"primary", Column{Name: "id int", IsPrimaryKey: true}, "PK"},
		{"foreign", Column{Name: "owner int", IsForeignKey: true}, "FK"},
		{"both", Column{Name: "id int", IsPrimaryKey: true, IsForeignKey: true}, "PK | FK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.col.Badge(); got != tt.badge {
				t.Errorf("\ngot badge %q, wanted %q", got, tt.badge)
			}
		})
	}
}

func TestIdent(t *testing.T) {
	var tests = []struct {
		name  string
		ident string
	}{
		{"id int", "id"},
		{"  PersonID\tint PRIMARY KEY", "PersonID"},
		{"id", "id"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Column{Name: tt.name}).Ident(); got != tt.ident {
				t.Errorf("\ngot ident %q, wanted %q", got, tt.ident)
			}
		})
	}
}

func TestMirror(t *testing.T) {
	origin := ForeignKey{
		SourceColumnName: "owner int",
		SourceTableName:  "pets",
		TargetColumnName: "id",
		TargetTableName:  "people",
	}
	want := ForeignKey{
		SourceColumnName:  "id",
		SourceTableName:   "people",
		TargetColumnName:  "owner int",
		TargetTableName:   "pets",
		IsDestinationCopy: true,
	}

	if got := origin.Mirror(); got != want {
		t.Errorf("\ngot %v, wanted %v", got, want)
	}
	if got := origin.Mirror().Mirror(); got != origin {
		t.Errorf("\nmirroring twice gave %v, wanted %v", got, origin)
	}
}

func TestOrigins(t *testing.T) {
	a := ForeignKey{SourceTableName: "a", TargetTableName: "b"}
	c := ForeignKey{SourceTableName: "c", TargetTableName: "b"}
	s := Schema{ForeignKeys: []ForeignKey{a, a.Mirror(), c, c.Mirror()}}

	if got := s.Origins(); !reflect.DeepEqual(got, []ForeignKey{a, c}) {
		t.Errorf("\ngot origins %v, wanted %v", got, []ForeignKey{a, c})
	}
}
