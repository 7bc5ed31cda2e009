package monitor

import "time"

const (
	initialUptime = 100.0
	uptimePenalty = 0.1
	uptimeCredit  = 0.01
)

// ServiceMetrics tracks the health of one probed dependency.
type ServiceMetrics struct {
	Connected bool      `json:"connected"`
	LastCheck time.Time `json:"last_check"`
	// ResponseTimeMs is a moving average weighting the newest sample at 30%.
	ResponseTimeMs float64 `json:"response_time_ms"`
	// ErrorRate is an exponential moving average of failures in the 0..1 range.
	ErrorRate  float64 `json:"error_rate"`
	Uptime     float64 `json:"uptime"`
	ErrorCount int     `json:"error_count"`
	LastError  string  `json:"last_error,omitempty"`
}

func newServiceMetrics() *ServiceMetrics {
	return &ServiceMetrics{Uptime: initialUptime}
}

// record folds one check result into the metrics.
// A zero response time leaves the average untouched.
func (m *ServiceMetrics) record(rt time.Duration, err error, at time.Time) {
	if ms := float64(rt) / float64(time.Millisecond); ms > 0 {
		m.ResponseTimeMs = m.ResponseTimeMs*0.7 + ms*0.3
	}

	m.ErrorRate *= 0.9
	m.LastCheck = at

	if err != nil {
		m.Connected = false
		m.ErrorRate += 0.1
		m.Uptime = max(0, m.Uptime-uptimePenalty)
		m.ErrorCount++
		m.LastError = err.Error()
		return
	}

	m.Connected = true
	m.Uptime = min(initialUptime, m.Uptime+uptimeCredit)
	m.LastError = ""
}

// TableStatus is the outcome of counting the rows of one table.
type TableStatus struct {
	Name     string `json:"name"`
	Healthy  bool   `json:"healthy"`
	RowCount *int64 `json:"row_count,omitempty"`
	Error    string `json:"error,omitempty"`
}
