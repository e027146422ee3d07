package db

import (
	"fmt"
	"sort"
	"strings"
)

// placeholder renders the n-th (1-based) bind parameter for a dialect.
type placeholder func(n int) string

func questionMark(int) string  { return "?" }
func dollar(n int) string      { return fmt.Sprintf("$%d", n) }

// buildSelect renders the provider query. Filter columns are compared as
// text so callers never need to know a column's SQL type.
func buildSelect(table string, filters Filters, ph placeholder) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(table)

	cols := filters.Columns()
	args := make([]any, 0, len(cols))
	for i, col := range cols {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "CAST(%s AS TEXT) = %s", col, ph(i+1))
		args = append(args, filters[col])
	}
	b.WriteString(" ORDER BY ord")
	return b.String(), args
}

// buildInsert renders an INSERT for one row. The ord column is set from
// position unless the row carries its own.
func buildInsert(table string, row Row, position int, ph placeholder) (string, []any, error) {
	cols := make([]string, 0, len(row)+1)
	for col := range row {
		if !columnRe.MatchString(col) {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidColumn, col)
		}
		cols = append(cols, col)
	}
	if _, ok := row["ord"]; !ok {
		cols = append(cols, "ord")
	}
	sort.Strings(cols)

	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, col := range cols {
		if col == "ord" {
			if v, ok := row["ord"]; ok {
				args[i] = v
			} else {
				args[i] = position
			}
		} else {
			args[i] = row[col]
		}
		marks[i] = ph(i + 1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	return q, args, nil
}
