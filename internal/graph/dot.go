// Package graph renders a resolved schema as a graph description for a
// layout engine: Graphviz DOT for the diagram panel, Mermaid for documents.
//
// Output depends only on the order of the table list and the foreign key
// list, so the same schema always renders to the same bytes.
package graph

import (
	"bytes"
	"html"
	"regexp"
	"strconv"
	"text/template"

	"dbizzy/internal/model"
)

// Options controls the look of the DOT output.
type Options struct {
	RankDir     string `yaml:"rank_dir" toml:"rank_dir" json:"rank_dir"`
	FontName    string `yaml:"font_name" toml:"font_name" json:"font_name"`
	FontSize    int    `yaml:"font_size" toml:"font_size" json:"font_size"`
	HeaderColor string `yaml:"header_color" toml:"header_color" json:"header_color"`
	RowColor    string `yaml:"row_color" toml:"row_color" json:"row_color"`
	BadgeColor  string `yaml:"badge_color" toml:"badge_color" json:"badge_color"`
	EdgeColor   string `yaml:"edge_color" toml:"edge_color" json:"edge_color"`
}

// DefaultOptions returns the diagram panel's fonts and colours.
func DefaultOptions() Options {
	return Options{
		RankDir:     "LR",
		FontName:    "opensans",
		FontSize:    10,
		HeaderColor: "#232d95",
		RowColor:    "gray25",
		BadgeColor:  "#e2c044",
		EdgeColor:   "#5ea54a",
	}
}

// WithDefaults fills unset fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.RankDir == "" {
		o.RankDir = d.RankDir
	}
	if o.FontName == "" {
		o.FontName = d.FontName
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.HeaderColor == "" {
		o.HeaderColor = d.HeaderColor
	}
	if o.RowColor == "" {
		o.RowColor = d.RowColor
	}
	if o.BadgeColor == "" {
		o.BadgeColor = d.BadgeColor
	}
	if o.EdgeColor == "" {
		o.EdgeColor = d.EdgeColor
	}
	return o
}

var dotTmpl = template.Must(template.New("dot").Funcs(template.FuncMap{
	"id":    dotID,
	"quote": strconv.Quote,
	"html":  html.EscapeString,
	"ident": model.FirstToken,
}).Parse(`digraph G {
  bgcolor = "none"
  graph [rankdir = {{quote .Opts.RankDir}}];
  node [fontsize = {{.Opts.FontSize}} fontname = {{quote .Opts.FontName}} shape = plain];
{{- range .Tables}}
  {{id .Name}} [label=<<table border="0" cellborder="1" cellspacing="0" color="white"><tr><td align="left" bgcolor="{{html $.Opts.HeaderColor}}"><b><font color="white">{{html .Name}}</font></b></td></tr>
{{- range .Columns}}
    <tr><td align="left" bgcolor="{{html $.Opts.RowColor}}" port="{{html .Ident}}">
{{- with .Badge}}<font color="{{html $.Opts.BadgeColor}}">{{html .}}</font> | {{end -}}
<font color="white">{{html .Name}}</font></td></tr>
{{- end}}
  </table>>];
{{- end}}
{{- range .Edges}}
  {{id .SourceTableName}}:{{id (ident .SourceColumnName)}} -> {{id .TargetTableName}}:{{id (ident .TargetColumnName)}} [color = {{quote $.Opts.EdgeColor}}];
{{- end}}
}
`))

// DOT renders the schema as a Graphviz digraph: one HTML-label node per
// table, one row per column, and one edge per origin foreign key.
func DOT(s model.Schema, opts Options) string {
	var buf bytes.Buffer
	err := dotTmpl.Execute(&buf, struct {
		Opts   Options
		Tables []model.Table
		Edges  []model.ForeignKey
	}{opts.WithDefaults(), s.Tables, s.Origins()})
	if err != nil {
		panic(err) // writes to a bytes.Buffer do not fail
	}
	return buf.String()
}

var bareID = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// dotID writes a DOT identifier, quoting it unless it is a plain name.
func dotID(s string) string {
	if bareID.MatchString(s) {
		return s
	}
	return strconv.Quote(s)
}
