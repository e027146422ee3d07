package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gchang12/aenir/internal/data"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrInvalidColumn = errors.New("invalid column name")
)

// Provider is the read-only query surface the engine needs over the
// per-game stat tables. Query returns rows whose columns equal every
// filter, in table order. Implementations must be safe for concurrent
// readers.
type Provider interface {
	Query(ctx context.Context, table string, filters Filters) (RowSet, error)
}

// Writer appends rows to a stat table. Used by the import tooling only;
// the engine never writes.
type Writer interface {
	InsertRows(ctx context.Context, table string, rows RowSet) error
}

// Filters maps column → exact value.
type Filters map[string]string

// Columns returns filter columns sorted, so generated SQL is stable.
func (f Filters) Columns() []string {
	cols := make([]string, 0, len(f))
	for c := range f {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// With returns a copy of f with column set to value.
func (f Filters) With(column, value string) Filters {
	out := make(Filters, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[column] = value
	return out
}

// Row is one table row keyed by lower-case column name. Values keep the
// driver's type (string, int64, float64, …); nil is SQL NULL.
type Row map[string]any

// RowSet is an ordered query result.
type RowSet []Row

// String returns the column as text. ok is false for absent or NULL columns.
func (r Row) String(col string) (string, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	default:
		return fmt.Sprint(x), true
	}
}

// Float returns the column as a number. ok is false for absent, NULL or
// non-numeric columns.
func (r Row) Float(col string) (float64, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Stats extracts the named stats from the row. Stat names map to
// lower-case columns; absent or NULL columns are left out of the result.
func (r Row) Stats(names []string) map[string]float64 {
	out := make(map[string]float64, len(names))
	for _, name := range names {
		if f, ok := r.Float(StatColumn(name)); ok {
			out[name] = f
		}
	}
	return out
}

// StatColumn returns the column that stores a stat.
func StatColumn(stat string) string {
	return strings.ToLower(stat)
}

// StatColumns lists every stat column known to the schema migrations.
var StatColumns = []string{"hp", "pow", "mag", "skl", "spd", "lck", "def", "res", "con", "mov", "lea"}

var knownTables = map[string]struct{}{
	data.TableBaseStats:       {},
	data.TableGrowthRates:     {},
	data.TableHardModeBonuses: {},
	data.TablePromotionGains:  {},
	data.TableMaximumStats:    {},
}

var columnRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// checkQuery guards SQL providers against identifiers that did not come
// from the engine.
func checkQuery(table string, filters Filters) error {
	if _, ok := knownTables[table]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	for col := range filters {
		if !columnRe.MatchString(col) {
			return fmt.Errorf("%w: %q", ErrInvalidColumn, col)
		}
	}
	return nil
}
