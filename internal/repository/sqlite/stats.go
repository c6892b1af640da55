package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

var _ repository.StatsRepository = (*DB)(nil)

// Stats computes the four dashboard aggregates with full-table queries.
// Nothing is cached or maintained incrementally.
func (db *DB) Stats(ctx context.Context) (*model.Stats, error) {
	var (
		stats      model.Stats
		salesCents int64
	)

	if err := db.q(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(price_cents), 0) FROM orders WHERE status = ?`,
		model.OrderCompleted,
	).Scan(&salesCents); err != nil {
		return nil, fmt.Errorf("sqlite: summing completed orders: %w", err)
	}
	stats.TotalSales = fromCents(salesCents)

	counts := []struct {
		table string
		dest  *int
	}{
		{"themes", &stats.TotalThemes},
		{"users", &stats.TotalUsers},
		{"orders", &stats.TotalOrders},
	}
	for _, c := range counts {
		if err := db.q(ctx).QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+c.table,
		).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("sqlite: counting %s: %w", c.table, err)
		}
	}

	return &stats, nil
}
