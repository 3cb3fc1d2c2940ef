package graph

import (
	"fmt"
	"regexp"
	"strings"

	"dbizzy/internal/model"
)

var (
	mermaidName  = regexp.MustCompile(`[^A-Za-z0-9_\-]+`)
	mermaidType  = regexp.MustCompile(`[^A-Za-z0-9_\-\[\]\(\)]+`)
	mermaidStart = regexp.MustCompile(`^[A-Za-z_]`)
)

// Mermaid renders the schema as a Mermaid erDiagram. Tables and columns
// keep their declaration order.
func Mermaid(s model.Schema) string {
	var md strings.Builder
	md.WriteString("erDiagram\n")

	for _, t := range s.Tables {
		fmt.Fprintf(&md, "    %s {\n", mermaidEntity(t.Name))
		for _, c := range t.Columns {
			typ, name := mermaidAttribute(c.Name)
			line := fmt.Sprintf("        %s %s", typ, name)
			if keys := mermaidKeys(c); keys != "" {
				line += " " + keys
			}
			md.WriteString(line + "\n")
		}
		md.WriteString("    }\n")
	}

	for _, fk := range s.Origins() {
		fmt.Fprintf(&md, "    %s ||--o{ %s : %q\n",
			mermaidEntity(fk.TargetTableName),
			mermaidEntity(fk.SourceTableName),
			model.FirstToken(fk.SourceColumnName))
	}
	return md.String()
}

func mermaidEntity(name string) string {
	e := mermaidName.ReplaceAllString(name, "_")
	if !mermaidStart.MatchString(e) {
		e = "t_" + e
	}
	return e
}

// mermaidAttribute splits a column line into Mermaid's "type name" pair.
func mermaidAttribute(col string) (typ, name string) {
	f := strings.Fields(strings.NewReplacer("[", "", "]", "", "`", "").Replace(col))
	if len(f) == 0 {
		return "column", "unnamed"
	}
	name = mermaidEntity(f[0])
	if len(f) > 1 {
		typ = mermaidType.ReplaceAllString(f[1], "")
	}
	if typ == "" || !mermaidStart.MatchString(typ) {
		typ = "column"
	}
	return typ, name
}

func mermaidKeys(c model.Column) string {
	var keys []string
	if c.IsPrimaryKey {
		keys = append(keys, "PK")
	}
	if c.IsForeignKey {
		keys = append(keys, "FK")
	}
	return strings.Join(keys, ",")
}
