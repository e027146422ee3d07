package db

import (
	"context"
	"fmt"
	"log/slog"
)

// Import copies every table of src into w, in table order.
func Import(ctx context.Context, w Writer, src *MemoryProvider) error {
	for _, table := range src.Tables() {
		rows := src.Rows(table)
		if err := w.InsertRows(ctx, table, rows); err != nil {
			return fmt.Errorf("importing %s: %w", table, err)
		}
		slog.Info("imported table", "table", table, "rows", len(rows))
	}
	return nil
}
