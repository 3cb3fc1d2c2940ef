package graph

import (
	"strings"
	"testing"

	"dbizzy/internal/model"
)

func scenario() model.Schema {
	origin := model.ForeignKey{
		SourceColumnName: "id int",
		SourceTableName:  "a",
		TargetColumnName: "id",
		TargetTableName:  "b",
	}
	return model.Schema{
		Tables: []model.Table{
			{Name: "b", Columns: []model.Column{{Name: "id int", TableName: "b", IsPrimaryKey: true}}},
			{Name: "a", Columns: []model.Column{{Name: "id int", TableName: "a", IsForeignKey: true}}},
		},
		ForeignKeys: []model.ForeignKey{origin, origin.Mirror()},
	}
}

const scenarioDOT = `digraph G {
  bgcolor = "none"
  graph [rankdir = "LR"];
  node [fontsize = 10 fontname = "opensans" shape = plain];
  b [label=<<table border="0" cellborder="1" cellspacing="0" color="white"><tr><td align="left" bgcolor="#232d95"><b><font color="white">b</font></b></td></tr>
    <tr><td align="left" bgcolor="gray25" port="id"><font color="#e2c044">PK</font> | <font color="white">id int</font></td></tr>
  </table>>];
  a [label=<<table border="0" cellborder="1" cellspacing="0" color="white"><tr><td align="left" bgcolor="#232d95"><b><font color="white">a</font></b></td></tr>
    <tr><td align="left" bgcolor="gray25" port="id"><font color="#e2c044">FK</font> | <font color="white">id int</font></td></tr>
  </table>>];
  a:id -> b:id [color = "#5ea54a"];
}
`

func TestDOT(t *testing.T) {
	got := DOT(scenario(), Options{})
	if got != scenarioDOT {
		t.Errorf("\ngot dot\n%s\nwanted\n%s", got, scenarioDOT)
	}
}

func TestDOTDeterministic(t *testing.T) {
	first := DOT(scenario(), DefaultOptions())
	for i := 0; i < 10; i++ {
		if got := DOT(scenario(), DefaultOptions()); got != first {
			t.Fatalf("\nrun %d differs:\n%s\n%s", i, got, first)
		}
	}
}

func TestDOTEdgeCount(t *testing.T) {
	s := scenario()
	extra := model.ForeignKey{SourceColumnName: "x", SourceTableName: "a", TargetColumnName: "y", TargetTableName: "c"}
	s.ForeignKeys = append(s.ForeignKeys, extra, extra.Mirror())

	dot := DOT(s, DefaultOptions())
	if n := strings.Count(dot, " -> "); n != len(s.Origins()) {
		t.Errorf("\ngot %d edges, wanted %d", n, len(s.Origins()))
	}
	if strings.Contains(dot, "b:id -> a:id") {
		t.Errorf("\ndestination copy rendered as an edge:\n%s", dot)
	}
}

func TestDOTPlainColumn(t *testing.T) {
	s := model.Schema{Tables: []model.Table{{Name: "t", Columns: []model.Column{{Name: "name text"}}}}}

	dot := DOT(s, DefaultOptions())
	want := `<tr><td align="left" bgcolor="gray25" port="name"><font color="white">name text</font></td></tr>`
	if !strings.Contains(dot, want) {
		t.Errorf("\ngot dot\n%s\nwanted row %s", dot, want)
	}
}

func TestDOTEscaping(t *testing.T) {
	origin := model.ForeignKey{
		SourceColumnName: "[owner id] int",
		SourceTableName:  "sales.Orders",
		TargetColumnName: "id",
		TargetTableName:  "People",
	}
	s := model.Schema{
		Tables: []model.Table{
			{Name: "sales.Orders", Columns: []model.Column{{Name: `note varchar(10) DEFAULT '<none>'`}}},
		},
		ForeignKeys: []model.ForeignKey{origin},
	}

	dot := DOT(s, Options{EdgeColor: "red"})
	for _, want := range []string{
		`"sales.Orders" [label=<`,
		`DEFAULT &#39;&lt;none&gt;&#39;`,
		`"sales.Orders":"[owner" -> People:id [color = "red"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("\ngot dot\n%s\nwanted it to contain %s", dot, want)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	got := Options{RankDir: "TB", FontSize: 12}.WithDefaults()
	want := DefaultOptions()
	want.RankDir = "TB"
	want.FontSize = 12
	if got != want {
		t.Errorf("\ngot options %+v, wanted %+v", got, want)
	}
}

func TestMermaid(t *testing.T) {
	got := Mermaid(scenario())
	want := `erDiagram
    b {
        int id PK
    }
    a {
        int id FK
    }
    b ||--o{ a : "id"
`
	if got != want {
		t.Errorf("\ngot mermaid\n%s\nwanted\n%s", got, want)
	}
}

func TestMermaidAttribute(t *testing.T) {
	var tests = []struct {
		col  string
		typ  string
		name string
	}{
		{"id int", "int", "id"},
		{"LastName varchar(255)", "varchar(255)", "LastName"},
		{"[Id] int NOT NULL", "int", "Id"},
		{"flag", "column", "flag"},
		{"", "column", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.col, func(t *testing.T) {
			typ, name := mermaidAttribute(tt.col)
			if typ != tt.typ || name != tt.name {
				t.Errorf("\ngot %q %q, wanted %q %q", typ, name, tt.typ, tt.name)
			}
		})
	}
}
