package postgres

import (
	"context"
	"log/slog"

	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/store"
)

// queryAll runs a query and scans every row with scan. It returns an empty,
// non-nil slice when nothing matches.
func queryAll[T any](
	ctx context.Context,
	db store.DBTX,
	base *slog.Logger,
	what string,
	scan func(rowScanner) (*T, error),
	query string,
	args ...any,
) ([]*T, error) {
	log := logger.FromContextOrDefault(ctx, base)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed",
			slog.String("error", err.Error()),
			slog.String("entity", what))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			log.Error("failed to scan row",
				slog.String("error", err.Error()),
				slog.String("entity", what))
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating rows",
			slog.String("error", err.Error()),
			slog.String("entity", what))
		return nil, err
	}

	log.Debug("query completed",
		slog.String("entity", what),
		slog.Int("count", len(result)))
	return result, nil
}

// queryInt runs a query returning a single integer.
func queryInt(ctx context.Context, db store.DBTX, query string, args ...any) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}
