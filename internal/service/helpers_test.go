package service_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var nopLog = zerolog.Nop()

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		BcryptCost:     4,
		ReportCacheTTL: time.Minute,
	}
}
