// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated timings for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// Snapshot represents the full service statistics at a point in time.
type Snapshot struct {
	UptimeSeconds   float64                       `json:"uptime_seconds"`
	AgentSelections map[string]int64              `json:"agent_selections,omitempty"`
	Operations      map[string]*OperationSnapshot `json:"operations,omitempty"`
}

// Operation names for the collector.
const (
	OpEmbedding   = "embedding"
	OpGeneration  = "generation"
	OpDBQuery     = "db_query"
	OpIndexSearch = "index_search"
	OpGateway     = "gateway"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu         sync.RWMutex
	startTime  time.Time
	ops        map[string]*OperationMetrics
	selections map[string]int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime:  time.Now(),
		ops:        make(map[string]*OperationMetrics),
		selections: make(map[string]int64),
	}
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}

	m.Count++
	m.TotalTime += duration
	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Time runs RecordTiming for the elapsed time since start. Intended for
// defer at the top of an operation:
//
//	defer c.Time(metrics.OpDBQuery, time.Now())
func (c *Collector) Time(op string, start time.Time) {
	c.RecordTiming(op, time.Since(start))
}

// RecordSelection counts a routing decision for an agent.
func (c *Collector) RecordSelection(agentName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selections[agentName]++
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
	}

	if len(c.selections) > 0 {
		snap.AgentSelections = make(map[string]int64, len(c.selections))
		for name, count := range c.selections {
			snap.AgentSelections[name] = count
		}
	}

	if len(c.ops) > 0 {
		snap.Operations = make(map[string]*OperationSnapshot, len(c.ops))
		for op, m := range c.ops {
			if m.Count == 0 {
				continue
			}
			snap.Operations[op] = &OperationSnapshot{
				Count:       m.Count,
				TotalTimeMs: m.TotalTime.Milliseconds(),
				AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
				MinTimeMs:   m.MinTime.Milliseconds(),
				MaxTimeMs:   m.MaxTime.Milliseconds(),
			}
		}
	}

	return snap
}
