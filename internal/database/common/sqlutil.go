package common

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultRowLimit caps the rows a read statement may return when the
// statement carries no LIMIT of its own.
const DefaultRowLimit = 1000

// FirstKeyword returns the first word of the statement, lowercased.
func FirstKeyword(query string) string {
	q := strings.TrimSpace(query)
	end := strings.IndexFunc(q, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ';'
	})
	if end == -1 {
		end = len(q)
	}
	return strings.ToLower(q[:end])
}

// IsReadStatement reports whether the statement's leading keyword is one
// of the given read keywords. The keyword list varies per engine; every
// engine accepts select and with, and some add metadata commands such as
// show or describe.
func IsReadStatement(query string, readKeywords []string) bool {
	kw := FirstKeyword(query)
	for _, k := range readKeywords {
		if kw == k {
			return true
		}
	}
	return false
}

// metadata commands produce small fixed result sets and never receive a
// row cap.
var metadataKeywords = map[string]bool{
	"show":     true,
	"describe": true,
	"desc":     true,
	"explain":  true,
	"pragma":   true,
}

// IsMetadataStatement reports whether the statement is a metadata
// command rather than a row-producing query.
func IsMetadataStatement(query string) bool {
	return metadataKeywords[FirstKeyword(query)]
}

// HasLimitClause reports whether the statement already contains a LIMIT
// keyword as a standalone word, case-insensitively. The scan is textual:
// a LIMIT inside a string literal or subquery also counts, which errs on
// the side of never stacking a second cap onto a bounded query.
func HasLimitClause(query string) bool {
	lower := strings.ToLower(query)
	for i := 0; ; {
		j := strings.Index(lower[i:], "limit")
		if j == -1 {
			return false
		}
		j += i
		prev, _ := utf8.DecodeLastRuneInString(lower[:j])
		before := j == 0 || isWordBoundary(prev)
		end := j + len("limit")
		next, _ := utf8.DecodeRuneInString(lower[end:])
		after := end >= len(lower) || isWordBoundary(next)
		if before && after {
			return true
		}
		i = end
	}
}

func isWordBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}

// ApplyRowLimit appends a LIMIT clause to a read statement that has
// none. Statements that already carry a LIMIT, and metadata commands,
// come back unchanged, so the rewrite is idempotent. Any trailing
// semicolon is dropped before the clause is appended.
func ApplyRowLimit(query string, limit int) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return query
	}
	if IsMetadataStatement(trimmed) || HasLimitClause(trimmed) {
		return query
	}
	trimmed = strings.TrimRight(trimmed, "; \t\r\n")
	return trimmed + " LIMIT " + strconv.Itoa(limit)
}
