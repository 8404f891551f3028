package common

import (
	"time"

	"github.com/dbscope/dbscope/pkg/dbvalue"
)

// SelectResult holds a fully materialized result set.
type SelectResult struct {
	Columns []dbvalue.ColumnInfo `json:"columns"`
	Rows    []dbvalue.Row        `json:"rows"`
	// RowCount is the number of rows returned, after any row cap.
	RowCount int `json:"rowCount"`
	// ElapsedMS is wall-clock execution time in milliseconds.
	ElapsedMS int64 `json:"elapsedMs"`
	// OriginalQuery is the statement as submitted, before any rewrite.
	OriginalQuery string `json:"originalQuery,omitempty"`
}

// ModifiedResult reports a completed write statement.
type ModifiedResult struct {
	// RowsAffected is the engine-reported affected row count. Engines
	// that do not report one return zero.
	RowsAffected int64 `json:"rowsAffected"`
	ElapsedMS    int64 `json:"elapsedMs"`
}

// ErrorResult reports a failed statement. Execution errors are data,
// not Go errors: the caller renders the message alongside the elapsed
// time, exactly like a successful result.
type ErrorResult struct {
	Message   string `json:"message"`
	ElapsedMS int64  `json:"elapsedMs"`
}

// QueryExecutionResult is a tagged union over the three statement
// outcomes. Exactly one field is non-nil.
type QueryExecutionResult struct {
	Select   *SelectResult   `json:"select,omitempty"`
	Modified *ModifiedResult `json:"modified,omitempty"`
	Err      *ErrorResult    `json:"error,omitempty"`
}

// NewSelectResult builds a select outcome, deriving RowCount from rows.
func NewSelectResult(columns []dbvalue.ColumnInfo, rows []dbvalue.Row, elapsedMS int64, originalQuery string) QueryExecutionResult {
	return QueryExecutionResult{Select: &SelectResult{
		Columns:       columns,
		Rows:          rows,
		RowCount:      len(rows),
		ElapsedMS:     elapsedMS,
		OriginalQuery: originalQuery,
	}}
}

// NewModifiedResult builds a write outcome.
func NewModifiedResult(rowsAffected, elapsedMS int64) QueryExecutionResult {
	return QueryExecutionResult{Modified: &ModifiedResult{
		RowsAffected: rowsAffected,
		ElapsedMS:    elapsedMS,
	}}
}

// NewErrorResult builds a failure outcome.
func NewErrorResult(message string, elapsedMS int64) QueryExecutionResult {
	return QueryExecutionResult{Err: &ErrorResult{
		Message:   message,
		ElapsedMS: elapsedMS,
	}}
}

// IsError reports whether the result is the failure variant.
func (r QueryExecutionResult) IsError() bool { return r.Err != nil }

// ElapsedMS returns the elapsed time of whichever variant is set.
func (r QueryExecutionResult) ElapsedMS() int64 {
	switch {
	case r.Select != nil:
		return r.Select.ElapsedMS
	case r.Modified != nil:
		return r.Modified.ElapsedMS
	case r.Err != nil:
		return r.Err.ElapsedMS
	}
	return 0
}

// ElapsedSince converts the wall-clock time since start to milliseconds.
func ElapsedSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
