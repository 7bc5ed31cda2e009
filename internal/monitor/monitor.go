package monitor

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 5 * time.Second

// Health summarises a round of checks.
type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthDegraded Health = "degraded"
	HealthDown     Health = "down"
)

// Status is a snapshot of every probe and monitored table.
type Status struct {
	Health    Health                    `json:"health"`
	LastCheck time.Time                 `json:"last_check"`
	Services  map[string]ServiceMetrics `json:"services"`
	Tables    []TableStatus             `json:"tables"`
}

// Diagnostic is a status with the actions it calls for.
type Diagnostic struct {
	Status          Status   `json:"status"`
	Recommendations []string `json:"recommendations"`
}

// Monitor periodically checks the application's dependencies.
type Monitor struct {
	probes    []Probe
	counter   TableCounter
	tables    []string
	interval  time.Duration
	slow      time.Duration
	newTicker TickerFactory
	now       func() time.Time
	log       zerolog.Logger

	mu          sync.RWMutex
	metrics     map[string]*ServiceMetrics
	tableStatus []TableStatus
	lastCheck   time.Time
}

// Option customises a Monitor.
type Option func(*Monitor)

// WithTicker replaces the time.Ticker source.
func WithTicker(f TickerFactory) Option {
	return func(m *Monitor) { m.newTicker = f }
}

// WithTables counts the rows of the given tables on every round.
func WithTables(counter TableCounter, tables ...string) Option {
	return func(m *Monitor) {
		m.counter = counter
		m.tables = tables
	}
}

// WithSlowThreshold sets the average response time above which checks are reported slow.
func WithSlowThreshold(d time.Duration) Option {
	return func(m *Monitor) { m.slow = d }
}

// WithClock replaces time.Now for check timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New creates a Monitor running the probes every interval.
func New(interval time.Duration, log zerolog.Logger, probes []Probe, opts ...Option) *Monitor {
	m := &Monitor{
		probes:    probes,
		interval:  interval,
		slow:      time.Second,
		newTicker: NewTimeTicker,
		now:       time.Now,
		log:       log.With().Str("component", "monitor").Logger(),
		metrics:   make(map[string]*ServiceMetrics, len(probes)),
	}
	for _, p := range probes {
		m.metrics[p.Name()] = newServiceMetrics()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run checks once immediately, then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info().Dur("interval", m.interval).Msg("Monitor started")

	ticker := m.newTicker(m.interval)
	defer ticker.Stop()

	m.CheckNow(ctx)
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("Monitor stopped")
			return
		case <-ticker.C():
			m.CheckNow(ctx)
		}
	}
}

// CheckNow runs every probe and table count concurrently and returns the resulting status.
func (m *Monitor) CheckNow(ctx context.Context) Status {
	type result struct {
		name string
		rt   time.Duration
		err  error
	}

	results := make([]result, len(m.probes))
	tables := make([]TableStatus, len(m.tables))

	var g errgroup.Group
	for i, p := range m.probes {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			start := time.Now()
			err := p.Check(cctx)
			rt := time.Since(start)
			if err != nil {
				// Failed checks carry no timing sample.
				rt = 0
			}
			results[i] = result{name: p.Name(), rt: rt, err: err}
			return nil
		})
	}
	for i, table := range m.tables {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			st := TableStatus{Name: table}
			n, err := m.counter.CountRows(cctx, table)
			if err != nil {
				st.Error = err.Error()
			} else {
				st.Healthy = true
				st.RowCount = &n
			}
			tables[i] = st
			return nil
		})
	}
	_ = g.Wait()

	at := m.now()

	m.mu.Lock()
	for _, r := range results {
		m.metrics[r.name].record(r.rt, r.err, at)
		if r.err != nil {
			m.log.Warn().Err(r.err).Str("probe", r.name).Msg("Health check failed")
		}
	}
	m.tableStatus = tables
	m.lastCheck = at
	m.mu.Unlock()

	for _, t := range tables {
		if !t.Healthy {
			m.log.Warn().Str("table", t.Name).Str("error", t.Error).Msg("Table check failed")
		}
	}

	return m.Status()
}

// Status returns the latest snapshot without running any check.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Status{
		LastCheck: m.lastCheck,
		Services:  make(map[string]ServiceMetrics, len(m.metrics)),
		Tables:    slices.Clone(m.tableStatus),
	}
	if st.Tables == nil {
		st.Tables = []TableStatus{}
	}
	for name, sm := range m.metrics {
		st.Services[name] = *sm
	}
	st.Health = m.health(st)
	return st
}

func (m *Monitor) health(st Status) Health {
	degraded := false
	for _, sm := range st.Services {
		if !sm.Connected {
			return HealthDown
		}
		if m.slow > 0 && sm.ResponseTimeMs > float64(m.slow)/float64(time.Millisecond) {
			degraded = true
		}
	}
	for _, t := range st.Tables {
		if !t.Healthy {
			degraded = true
		}
	}
	if degraded {
		return HealthDegraded
	}
	return HealthHealthy
}

// Diagnostic returns the latest status with recommendations for the operator.
func (m *Monitor) Diagnostic() Diagnostic {
	st := m.Status()
	recs := []string{}

	names := slices.Sorted(maps.Keys(st.Services))

	var errored, slow bool
	slowMs := float64(m.slow) / float64(time.Millisecond)
	for _, name := range names {
		sm := st.Services[name]
		if !sm.Connected {
			target := describe(name)
			recs = append(recs,
				fmt.Sprintf("Vérifiez les credentials de connexion à %s", target),
				fmt.Sprintf("Assurez-vous que %s est accessible", target),
			)
		}
		if sm.ErrorCount > 0 {
			errored = true
		}
		if m.slow > 0 && sm.ResponseTimeMs > slowMs {
			slow = true
		}
	}
	if errored {
		recs = append(recs, "Surveillez les logs pour identifier les erreurs récurrentes")
	}
	if slow {
		recs = append(recs, "Les temps de réponse sont élevés, optimisation recommandée")
	}

	var failing []string
	for _, t := range st.Tables {
		if !t.Healthy {
			failing = append(failing, t.Name)
		}
	}
	if len(failing) > 0 {
		recs = append(recs, "Vérifiez l'état des tables: "+strings.Join(failing, ", "))
	}

	return Diagnostic{Status: st, Recommendations: recs}
}

func describe(probe string) string {
	switch probe {
	case "database":
		return "la base de données"
	case "redis":
		return "Redis"
	default:
		return probe
	}
}
