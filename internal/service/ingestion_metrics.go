package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks the outcome of one refresh
type IngestionMetrics struct {
	mu        sync.RWMutex
	StartTime time.Time
	Duration  time.Duration
	Seasons   int
	Fetched   int
	Rejected  int
	Stored    int
	Props     int
	Errors    int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.Seasons = 0
	m.Fetched = 0
	m.Rejected = 0
	m.Stored = 0
	m.Props = 0
	m.Errors = 0
}

// RecordSeason records a season whose rows were fetched
func (m *IngestionMetrics) RecordSeason(rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Seasons++
	m.Fetched += rows
}

// RecordRejected records rows that failed validation
func (m *IngestionMetrics) RecordRejected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejected += n
}

// RecordStored records rows written to the database
func (m *IngestionMetrics) RecordStored(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored += n
}

// RecordProps records fetched prop lines
func (m *IngestionMetrics) RecordProps(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Props += n
}

// RecordError increments error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// Finish stamps the duration since StartTime
func (m *IngestionMetrics) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = time.Since(m.StartTime)
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"IngestionMetrics{Seasons=%d, Fetched=%d, Rejected=%d, Stored=%d, Props=%d, Errors=%d, Duration=%v}",
		m.Seasons,
		m.Fetched,
		m.Rejected,
		m.Stored,
		m.Props,
		m.Errors,
		m.Duration,
	)
}
