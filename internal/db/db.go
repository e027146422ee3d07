package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool and serves the stat tables from PostgreSQL.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Query implements Provider.
func (d *DB) Query(ctx context.Context, table string, filters Filters) (RowSet, error) {
	if err := checkQuery(table, filters); err != nil {
		return nil, err
	}
	q, args := buildSelect(table, filters, dollar)
	rows, err := d.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result RowSet
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			row[f.Name] = vals[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", table, err)
	}
	return result, nil
}

// InsertRows appends rows to table inside one transaction.
func (d *DB) InsertRows(ctx context.Context, table string, rows RowSet) error {
	if err := checkQuery(table, nil); err != nil {
		return err
	}
	err := pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		for i, row := range rows {
			q, args, err := buildInsert(table, row, i, dollar)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, q, args...); err != nil {
				return fmt.Errorf("inserting row %d into %s: %w", i, table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Debug("inserted rows", "table", table, "count", len(rows))
	return nil
}
