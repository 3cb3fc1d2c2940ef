package sqlrunner

import (
	"strings"
)

type chunkKind int

const (
	plainChunk chunkKind = iota
	quotedChunk
	commentChunk
)

// chunk returns the kind of the lexical chunk starting at s[i] and the
// index just past it. Quoted strings and identifiers ('', "", ``, [])
// and comments are single chunks; anything else is one byte.
func chunk(s string, i int) (chunkKind, int) {
	switch c := s[i]; {
	case c == '\'' || c == '"' || c == '`' || c == '[':
		end := c
		if c == '[' {
			end = ']'
		}
		for j := i + 1; j < len(s); j++ {
			if s[j] != end {
				continue
			}
			// a doubled quote is an escaped quote
			if c != '[' && j+1 < len(s) && s[j+1] == end {
				j++
				continue
			}
			return quotedChunk, j + 1
		}
		return quotedChunk, len(s)
	case c == '-' && strings.HasPrefix(s[i:], "--"):
		if j := strings.IndexByte(s[i:], '\n'); j != -1 {
			return commentChunk, i + j + 1
		}
		return commentChunk, len(s)
	case c == '/' && strings.HasPrefix(s[i:], "/*"):
		if j := strings.Index(s[i+2:], "*/"); j != -1 {
			return commentChunk, i + 2 + j + 2
		}
		return commentChunk, len(s)
	}
	return plainChunk, i + 1
}

// splitStatements splits a script on the semicolons that end statements.
// Semicolons inside quotes, comments and trigger bodies do not split.
// Statements holding nothing but comments are dropped.
func splitStatements(script string) []string {
	var stmts []string
	start := 0
	flush := func(end int) {
		stmt := strings.TrimSpace(script[start:end])
		start = end
		if strings.TrimSpace(stripComments(stmt)) != "" {
			stmts = append(stmts, stmt)
		}
	}

	for i := 0; i < len(script); {
		kind, next := chunk(script, i)
		if kind == plainChunk && script[i] == ';' {
			stmt := script[start:i]
			if !isTrigger(stmt) || endsWithEnd(stmt) {
				flush(i)
				start = next
			}
		}
		i = next
	}
	flush(len(script))
	return stmts
}

// stripComments removes comments outside quotes.
func stripComments(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		kind, next := chunk(s, i)
		if kind == commentChunk {
			b.WriteByte(' ')
		} else {
			b.WriteString(s[i:next])
		}
		i = next
	}
	return b.String()
}

func isTrigger(stmt string) bool {
	w := strings.Fields(strings.ToUpper(stripComments(stmt)))
	if len(w) < 2 || w[0] != "CREATE" {
		return false
	}
	if w[1] == "TEMP" || w[1] == "TEMPORARY" {
		w = w[1:]
	}
	return len(w) > 1 && w[1] == "TRIGGER"
}

func endsWithEnd(stmt string) bool {
	w := strings.Fields(strings.ToUpper(stripComments(stmt)))
	return len(w) > 0 && w[len(w)-1] == "END"
}
