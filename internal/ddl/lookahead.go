package ddl

import "strings"

// The two helpers below are the only places that read lines other than the
// current one. Both rely on fixed offsets from the current line.

// alterTableParts returns the table line and the constraint body of a
// statement laid out as
//
//	ALTER TABLE
//	<table>
//	ADD CONSTRAINT
//	<constraint body>
//
// where lines[i] is the "ALTER TABLE" line.
func alterTableParts(lines []string, i int) (table, constraint string) {
	return lookahead(lines, i, 1), lookahead(lines, i, 3)
}

// joinReferences rebuilds an inline foreign key whose REFERENCES clause was
// written on the following line as a single ALTER TABLE statement.
func joinReferences(table, line, next string) string {
	return "ALTER TABLE [dbo].[" + table + "]  WITH CHECK ADD " + line + " " + strings.TrimSpace(next)
}

// lookahead returns lines[i+n], or "" past the end of input.
func lookahead(lines []string, i, n int) string {
	if i+n < 0 || i+n >= len(lines) {
		return ""
	}
	return lines[i+n]
}
