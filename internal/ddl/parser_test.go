package ddl

import (
	"reflect"
	"strings"
	"testing"

	"dbizzy/internal/model"
)

const mysqlSchema = `CREATE TABLE b(
 id int,
 PRIMARY KEY (id)
);
CREATE TABLE a(
 id int,
 FOREIGN KEY (id) REFERENCES b(id)
);`

const sqlServerSchema = `CREATE TABLE Persons
(
PersonID int PRIMARY KEY,
LastName varchar(255),
FirstName varchar(255)
);
CREATE TABLE [dbo].[Orders](
OrderID int PRIMARY KEY,
PersonID int FOREIGN KEY
REFERENCES Persons(PersonID),
Amount int
);`

// names returns the table names and, per table, the column names.
func names(s model.Schema) ([]string, [][]string) {
	var tables []string
	var cols [][]string
	for _, t := range s.Tables {
		tables = append(tables, t.Name)
		var cs []string
		for _, c := range t.Columns {
			cs = append(cs, c.Name)
		}
		cols = append(cols, cs)
	}
	return tables, cols
}

func column(t *testing.T, s model.Schema, table, name string) model.Column {
	t.Helper()
	for _, tab := range s.Tables {
		if tab.Name != table {
			continue
		}
		for _, c := range tab.Columns {
			if c.Name == name {
				return c
			}
		}
	}
	t.Fatalf("\ncolumn %s.%s not found in %+v", table, name, s.Tables)
	return model.Column{}
}

func TestParseSimpleTable(t *testing.T) {
	r := Parse("CREATE TABLE t(\n  id int,\n  name text\n);")

	tables, cols := names(r.Schema)
	if !reflect.DeepEqual(tables, []string{"t"}) {
		t.Fatalf("\ngot tables %v, wanted [t]", tables)
	}
	if !reflect.DeepEqual(cols[0], []string{"id int", "name text"}) {
		t.Errorf("\ngot columns %q, wanted [id int, name text]", cols[0])
	}
	for _, c := range r.Schema.Tables[0].Columns {
		if c.IsPrimaryKey || c.IsForeignKey || c.TableName != "t" {
			t.Errorf("\ngot column %+v, wanted a plain column of t", c)
		}
	}
	if len(r.Schema.ForeignKeys) != 0 || len(r.PrimaryKeys) != 0 {
		t.Errorf("\ngot keys %v %v, wanted none", r.Schema.ForeignKeys, r.PrimaryKeys)
	}
}

func TestParseMySQLKeys(t *testing.T) {
	r := Parse(mysqlSchema)

	tables, _ := names(r.Schema)
	if !reflect.DeepEqual(tables, []string{"b", "a"}) {
		t.Fatalf("\ngot tables %v, wanted [b a]", tables)
	}
	if c := column(t, r.Schema, "b", "id int"); !c.IsPrimaryKey {
		t.Errorf("\nb.id should be a primary key: %+v", c)
	}
	if c := column(t, r.Schema, "a", "id int"); !c.IsForeignKey {
		t.Errorf("\na.id should be a foreign key: %+v", c)
	}

	origins := r.Schema.Origins()
	want := model.ForeignKey{
		SourceColumnName: "id int",
		SourceTableName:  "a",
		TargetColumnName: "id",
		TargetTableName:  "b",
	}
	if len(origins) != 1 || origins[0] != want {
		t.Errorf("\ngot origins %v, wanted [%v]", origins, want)
	}
	if len(r.Schema.ForeignKeys) != 2 || r.Schema.ForeignKeys[1] != want.Mirror() {
		t.Errorf("\ngot foreign keys %v, wanted origin and destination pair", r.Schema.ForeignKeys)
	}
}

func TestParseMySQLForeignKeyTargets(t *testing.T) {
	r := Parse(`CREATE TABLE other(
 col2 int
);
CREATE TABLE pets(
 id int,
 col varchar(10),
 FOREIGN KEY (col) REFERENCES other(col2)
);`)

	if c := column(t, r.Schema, "pets", "col varchar(10)"); !c.IsForeignKey {
		t.Errorf("\ncol should be a foreign key: %+v", c)
	}
	origins := r.Schema.Origins()
	if len(origins) != 1 || origins[0].TargetTableName != "other" || origins[0].TargetColumnName != "col2" {
		t.Errorf("\ngot origins %v, wanted target other(col2)", origins)
	}
}

func TestParseReferenceDigits(t *testing.T) {
	var tests = []struct {
		name   string
		schema string
		source string
	}{
		{"mysql", `CREATE TABLE users1(
 id2 int
);
CREATE TABLE orders(
 uid int,
 FOREIGN KEY (uid) REFERENCES users1(id2)
);`, "uid int"},
		{"sqlserver", `CREATE TABLE users1(
id2 int
);
CREATE TABLE orders(
uid int FOREIGN KEY REFERENCES users1(id2),
total int
);`, "uid int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse(tt.schema)
			if c := column(t, r.Schema, "orders", tt.source); !c.IsForeignKey {
				t.Errorf("
%s should be a foreign key: %+v", tt.source, c)
			}
			want := model.ForeignKey{
				SourceColumnName: tt.source,
				SourceTableName:  "orders",
				TargetColumnName: "id2",
				TargetTableName:  "users1",
			}
			origins := r.Schema.Origins()
			if len(origins) != 1 || origins[0] != want {
				t.Errorf("
got origins %v, wanted [%v]", origins, want)
			}
		})
	}
}

func TestParseSQLServerBracketedReference(t *testing.T) {
	r := Parse(`CREATE TABLE [dbo].[Orders](
[PersonID] [int] NOT NULL FOREIGN KEY
REFERENCES [dbo].[Persons] ([PersonID]),
x int
);`)

	_, cols := names(r.Schema)
	want := []string{"[PersonID] [int] NOT NULL", "x int"}
	if len(cols) != 1 || !reflect.DeepEqual(cols[0], want) {
		t.Fatalf("
got columns %q, wanted %q", cols, want)
	}
	origins := r.Schema.Origins()
	if len(origins) != 1 || origins[0].TargetTableName != "Persons" || origins[0].TargetColumnName != "PersonID" {
		t.Errorf("
got origins %v, wanted target Persons(PersonID)", origins)
	}
}

func TestParseSQLServerUnreadableReference(t *testing.T) {
	r := Parse(`CREATE TABLE Orders(
PersonID int FOREIGN KEY,
x int
);`)

	_, cols := names(r.Schema)
	want := []string{"PersonID int", "x int"}
	if len(cols) != 1 || !reflect.DeepEqual(cols[0], want) {
		t.Errorf("
got columns %q, wanted %q", cols, want)
	}
	if n := len(r.Schema.Origins()); n != 0 {
		t.Errorf("
got %d relationships, wanted none", n)
	}
	if r.Stats.LinesSkipped == 0 {
		t.Errorf("
the unreadable reference should count as skipped")
	}
}

func TestParseNamedConstraint(t *testing.T) {
	r := Parse(`CREATE TABLE [dbo].[Users](
id int,
CONSTRAINT pk_x PRIMARY KEY (id)
);`)

	if c := column(t, r.Schema, "Users", "id int"); !c.IsPrimaryKey {
		t.Errorf("\nid should be a primary key: %+v", c)
	}
	if n := len(r.Schema.Tables[0].Columns); n != 1 {
		t.Errorf("\ngot %d columns, wanted 1", n)
	}
}

func TestParseSQLServerKeys(t *testing.T) {
	r := Parse(sqlServerSchema)

	tables, cols := names(r.Schema)
	if !reflect.DeepEqual(tables, []string{"Persons", "Orders"}) {
		t.Fatalf("\ngot tables %v, wanted [Persons Orders]", tables)
	}
	wantCols := [][]string{
		{"PersonID int", "LastName varchar(255)", "FirstName varchar(255)"},
		{"OrderID int", "PersonID int", "Amount int"},
	}
	if !reflect.DeepEqual(cols, wantCols) {
		t.Errorf("\ngot columns %q, wanted %q", cols, wantCols)
	}

	if c := column(t, r.Schema, "Persons", "PersonID int"); !c.IsPrimaryKey || c.IsForeignKey {
		t.Errorf("\ngot Persons.PersonID %+v, wanted primary key only", c)
	}
	if c := column(t, r.Schema, "Orders", "PersonID int"); !c.IsForeignKey || c.IsPrimaryKey {
		t.Errorf("\ngot Orders.PersonID %+v, wanted foreign key only", c)
	}
	origins := r.Schema.Origins()
	want := model.ForeignKey{
		SourceColumnName: "PersonID int",
		SourceTableName:  "Orders",
		TargetColumnName: "PersonID",
		TargetTableName:  "Persons",
	}
	if len(origins) != 1 || origins[0] != want {
		t.Errorf("\ngot origins %v, wanted [%v]", origins, want)
	}
}

func TestParseSQLServerBoth(t *testing.T) {
	r := Parse(`CREATE TABLE Persons(
PersonID int PRIMARY KEY
);
CREATE TABLE Employees(
PersonID int PRIMARY KEY FOREIGN KEY REFERENCES Persons(PersonID),
Title text
);`)

	_, cols := names(r.Schema)
	if !reflect.DeepEqual(cols[1], []string{"PersonID int", "Title text"}) {
		t.Errorf("\ngot columns %q, wanted the key column once", cols[1])
	}
	c := column(t, r.Schema, "Employees", "PersonID int")
	if c.Badge() != "PK | FK" {
		t.Errorf("\ngot badge %q, wanted PK | FK", c.Badge())
	}
}

func TestParseAlterTable(t *testing.T) {
	r := Parse(`CREATE TABLE b(
 id int
);
CREATE TABLE a(
 b_id int
);
ALTER TABLE
a
ADD CONSTRAINT fk_a_b
FOREIGN KEY (b_id) REFERENCES b(id);
ALTER TABLE
b
ADD CONSTRAINT pk_b
PRIMARY KEY (id);`)

	if c := column(t, r.Schema, "a", "b_id int"); !c.IsForeignKey {
		t.Errorf("\na.b_id should be a foreign key: %+v", c)
	}
	if c := column(t, r.Schema, "b", "id int"); !c.IsPrimaryKey {
		t.Errorf("\nb.id should be a primary key: %+v", c)
	}
	if n := len(r.Schema.Origins()); n != 1 {
		t.Errorf("\ngot %d origins, wanted 1", n)
	}
}

func TestParseAlterTableUnknown(t *testing.T) {
	r := Parse("ALTER TABLE\nnowhere\nADD CONSTRAINT x\nFOREIGN KEY (a) REFERENCES b(c);")

	if len(r.Schema.Tables) != 0 || len(r.Schema.ForeignKeys) != 0 {
		t.Errorf("\ngot %+v, wanted nothing", r.Schema)
	}
	if r.Stats.LinesSkipped != 1 {
		t.Errorf("\ngot %d skipped lines, wanted 1", r.Stats.LinesSkipped)
	}
}

func TestParseSkipsNoise(t *testing.T) {
	r := Parse(`CREATE TABLE [dbo].[Users](
[Id] int NOT NULL,
CONSTRAINT [PK_Users] PRIMARY KEY CLUSTERED
(
[Id] ASC
)WITH (PAD_INDEX = OFF) ON [PRIMARY]
INDEX ix_name NONCLUSTERED (Name)
/* comment */
GO
);`)

	_, cols := names(r.Schema)
	if !reflect.DeepEqual(cols, [][]string{{"[Id] int NOT NULL"}}) {
		t.Errorf("\ngot columns %q, wanted only [Id]", cols)
	}
	for _, c := range r.Schema.Tables[0].Columns {
		if strings.Contains(c.Name, "NONCLUSTERED") {
			t.Errorf("\nindex line became a column: %q", c.Name)
		}
	}
}

func TestParseFailOpen(t *testing.T) {
	var tests = []struct {
		name   string
		text   string
		tables int
	}{
		{"empty", "", 0},
		{"garbage", "hello\nworld\n", 0},
		{"unclosed table", "CREATE TABLE t(\n id int,\n", 0},
		{"broken foreign key", "CREATE TABLE t(\n id int,\n FOREIGN KEY id REFERENCES\n);", 1},
		{"alter at end of input", "ALTER TABLE", 0},
		{"split references at end of input", "CREATE TABLE t(\nx int FOREIGN KEY", 0},
		{"broken inline reference", "CREATE TABLE t(\nx int FOREIGN KEY REFERENCES [dbo].[u] ([id])\n);", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse(tt.text)
			if len(r.Schema.Tables) != tt.tables {
				t.Errorf("\ngot %d tables, wanted %d", len(r.Schema.Tables), tt.tables)
			}
		})
	}
}

func TestParseTableCount(t *testing.T) {
	var b strings.Builder
	want := []string{"alpha", "beta", "gamma", "delta"}
	for _, n := range want {
		b.WriteString("CREATE TABLE " + n + " (\n id int,\n label text\n);\n\n")
	}

	r := Parse(b.String())
	tables, _ := names(r.Schema)
	if !reflect.DeepEqual(tables, want) {
		t.Errorf("\ngot tables %v, wanted %v", tables, want)
	}
	if r.Stats.TablesCreated != len(want) {
		t.Errorf("\ngot TablesCreated %d, wanted %d", r.Stats.TablesCreated, len(want))
	}
}

func TestParseIdempotent(t *testing.T) {
	for _, text := range []string{mysqlSchema, sqlServerSchema} {
		first, second := Parse(text), Parse(text)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("\nparses differ:\n%+v\n%+v", first, second)
		}
	}
}

func TestResultEmpty(t *testing.T) {
	var tests = []struct {
		text  string
		empty bool
	}{
		{"", false},
		{"  \n\t\n", false},
		{"SELECT 1;", true},
		{"CREATE TABLE t(\nid int\n);", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Parse(tt.text).Empty(); got != tt.empty {
				t.Errorf("\ngot Empty() %v, wanted %v", got, tt.empty)
			}
		})
	}
}
