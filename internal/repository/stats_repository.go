package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MonitoredTables are the tables whose health is reported by the system monitor.
var MonitoredTables = []string{"students", "evaluators", "test_sessions", "test_responses", "evaluations"}

// StatsRepository provides table statistics for health monitoring.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// CountRows returns the exact row count of one of MonitoredTables.
func (r *StatsRepository) CountRows(ctx context.Context, table string) (int64, error) {
	if !isMonitored(table) {
		return 0, fmt.Errorf("table %q is not monitored", table)
	}
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+pgx.Identifier{table}.Sanitize()).Scan(&n)
	return n, err
}

// Ping checks that a connection can be acquired and used.
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func isMonitored(table string) bool {
	for _, t := range MonitoredTables {
		if t == table {
			return true
		}
	}
	return false
}
