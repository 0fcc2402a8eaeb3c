package models

import (
	"fmt"
	"sort"
	"strings"
)

// MalformedInputError reports a record whose attribute cannot be interpreted.
// It is fatal for the run.
type MalformedInputError struct {
	Entity string // "product" or "booking"
	ID     string
	Field  string
	Value  string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := fmt.Sprintf("malformed %s %q: field %s=%q", e.Entity, e.ID, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// SchemaMismatchError reports an input collection whose columns or column
// types do not match the declared schema
type SchemaMismatchError struct {
	Collection string
	Row        int // 1-based data row, 0 for header-level problems
	Column     string
	Reason     string
}

func (e *SchemaMismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema mismatch in %s", e.Collection)
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %s", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// EmptyInputError means a required collection had no rows. The run has
// nothing to do; this is not a failure of any stage.
type EmptyInputError struct {
	Collection string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no rows in %s", e.Collection)
}

// WriteFailure records a failed write of one output table
type WriteFailure struct {
	Table string
	Err   error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("write %s: %v", e.Table, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }

// WriteFailures aggregates every table write that failed in one run
type WriteFailures []*WriteFailure

func (f WriteFailures) Error() string {
	parts := make([]string, 0, len(f))
	for _, wf := range f {
		parts = append(parts, wf.Error())
	}
	sort.Strings(parts)
	return fmt.Sprintf("%d table write(s) failed: %s", len(f), strings.Join(parts, "; "))
}

// Tables lists the failed table names in sorted order
func (f WriteFailures) Tables() []string {
	names := make([]string, 0, len(f))
	for _, wf := range f {
		names = append(names, wf.Table)
	}
	sort.Strings(names)
	return names
}
