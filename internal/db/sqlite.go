package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteProvider serves the stat tables from a SQLite file.
type SQLiteProvider struct {
	db *sql.DB
}

// OpenSQLite opens the SQLite database at path. readOnly opens it with
// mode=ro, which is how the engine uses it once data is imported.
func OpenSQLite(path string, readOnly bool) (*SQLiteProvider, error) {
	dsn := path
	if readOnly {
		dsn += "?mode=ro"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{"PRAGMA foreign_keys=ON"}
	if !readOnly {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteProvider{db: sqlDB}, nil
}

// DB returns the underlying handle (for goose migrations).
func (p *SQLiteProvider) DB() *sql.DB {
	return p.db
}

// Close closes the database.
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

// Query implements Provider.
func (p *SQLiteProvider) Query(ctx context.Context, table string, filters Filters) (RowSet, error) {
	if err := checkQuery(table, filters); err != nil {
		return nil, err
	}
	q, args := buildSelect(table, filters, questionMark)
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}

	var result RowSet
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[strings.ToLower(c)] = vals[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", table, err)
	}
	return result, nil
}

// InsertRows appends rows to table inside one transaction.
func (p *SQLiteProvider) InsertRows(ctx context.Context, table string, rows RowSet) error {
	if err := checkQuery(table, nil); err != nil {
		return err
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert into %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, row := range rows {
		q, args, err := buildInsert(table, row, i, questionMark)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("inserting row %d into %s: %w", i, table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert into %s: %w", table, err)
	}
	slog.Debug("inserted rows", "table", table, "count", len(rows))
	return nil
}
