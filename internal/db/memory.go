package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MemoryProvider serves tables held in memory. It is read-only once
// built and safe for concurrent use.
type MemoryProvider struct {
	tables map[string]RowSet
}

// NewMemory builds a provider over the given tables. Column names are
// lower-cased; rows are copied.
func NewMemory(tables map[string]RowSet) *MemoryProvider {
	m := &MemoryProvider{tables: make(map[string]RowSet, len(tables))}
	for name, rows := range tables {
		out := make(RowSet, 0, len(rows))
		for _, row := range rows {
			cp := make(Row, len(row))
			for k, v := range row {
				cp[strings.ToLower(k)] = v
			}
			out = append(out, cp)
		}
		m.tables[name] = out
	}
	return m
}

// LoadMemory reads a YAML fixture of the form
//
//	table_name:
//	  - {game: "7", name: Lyn, hp: 16, ...}
func LoadMemory(fsys fs.FS, path string) (*MemoryProvider, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	var doc map[string][]map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	tables := make(map[string]RowSet, len(doc))
	for name, rows := range doc {
		if _, ok := knownTables[name]; !ok {
			return nil, fmt.Errorf("fixture %s: %w: %q", path, ErrUnknownTable, name)
		}
		set := make(RowSet, len(rows))
		for i, r := range rows {
			set[i] = Row(r)
		}
		tables[name] = set
	}
	return NewMemory(tables), nil
}

// Query implements Provider.
func (m *MemoryProvider) Query(_ context.Context, table string, filters Filters) (RowSet, error) {
	rows, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	var out RowSet
	for _, row := range rows {
		if matches(row, filters) {
			out = append(out, row)
		}
	}
	return out, nil
}

// Tables returns the table names held, sorted.
func (m *MemoryProvider) Tables() []string {
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rows returns every row of table in order.
func (m *MemoryProvider) Rows(table string) RowSet {
	return m.tables[table]
}

func matches(row Row, filters Filters) bool {
	for col, want := range filters {
		got, ok := row.String(col)
		if !ok || got != want {
			return false
		}
	}
	return true
}
