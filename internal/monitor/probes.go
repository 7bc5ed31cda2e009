package monitor

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Probe checks the availability of one dependency.
type Probe interface {
	Name() string
	Check(ctx context.Context) error
}

// TableCounter counts the rows of a table.
type TableCounter interface {
	CountRows(ctx context.Context, table string) (int64, error)
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PostgresProbe pings the database pool.
type PostgresProbe struct {
	db Pinger
}

// NewPostgresProbe creates a probe for the given pool.
func NewPostgresProbe(db Pinger) *PostgresProbe {
	return &PostgresProbe{db: db}
}

func (p *PostgresProbe) Name() string { return "database" }

func (p *PostgresProbe) Check(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// RedisProbe pings Redis.
type RedisProbe struct {
	rdb *redis.Client
}

// NewRedisProbe creates a probe for the given client.
func NewRedisProbe(rdb *redis.Client) *RedisProbe {
	return &RedisProbe{rdb: rdb}
}

func (p *RedisProbe) Name() string { return "redis" }

func (p *RedisProbe) Check(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}
