// Package metrics provides observability for the world server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Sync protocol metrics
	ConnectionsActive int64
	CommandsIn        int64
	CommandErrors     int64
	ResponsesOut      int64

	// Persistence metrics
	PersistCount      int64
	PersistLatencySum int64 // nanoseconds
	PersistLatencyMax int64
	PersistErrors     int64
	EventsWritten     int64

	// Simulation metrics
	TickCount         int64
	HeartbeatExpiries int64

	// Oracle metrics
	OracleCalls     int64
	OracleFallbacks int64

	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordConnection records a sync connection opening (+1) or closing (-1).
func (c *Collector) RecordConnection(delta int64) {
	atomic.AddInt64(&c.ConnectionsActive, delta)
}

// RecordCommand records a parsed inbound command and whether it failed.
func (c *Collector) RecordCommand(err bool) {
	atomic.AddInt64(&c.CommandsIn, 1)
	if err {
		atomic.AddInt64(&c.CommandErrors, 1)
	}
}

// RecordResponse records an outbound response.
func (c *Collector) RecordResponse() {
	atomic.AddInt64(&c.ResponsesOut, 1)
}

// RecordPersist records a state-document write.
func (c *Collector) RecordPersist(latency time.Duration, err error) {
	atomic.AddInt64(&c.PersistCount, 1)
	atomic.AddInt64(&c.PersistLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.PersistLatencyMax) {
		atomic.StoreInt64(&c.PersistLatencyMax, int64(latency))
	}
	if err != nil {
		atomic.AddInt64(&c.PersistErrors, 1)
	}
}

// RecordEventWrite records an event appended to the ledger.
func (c *Collector) RecordEventWrite() {
	atomic.AddInt64(&c.EventsWritten, 1)
}

// RecordTick records a completed world tick.
func (c *Collector) RecordTick() {
	atomic.AddInt64(&c.TickCount, 1)
}

// RecordHeartbeatExpiry records an agent going stale.
func (c *Collector) RecordHeartbeatExpiry() {
	atomic.AddInt64(&c.HeartbeatExpiries, 1)
}

// RecordOracleCall records a decision request and whether it fell back to idle.
func (c *Collector) RecordOracleCall(fallback bool) {
	atomic.AddInt64(&c.OracleCalls, 1)
	if fallback {
		atomic.AddInt64(&c.OracleFallbacks, 1)
	}
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	persists := atomic.LoadInt64(&c.PersistCount)
	var persistAvg float64
	if persists > 0 {
		persistAvg = float64(atomic.LoadInt64(&c.PersistLatencySum)) / float64(persists) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"sync": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.ConnectionsActive),
			"commands_in":        atomic.LoadInt64(&c.CommandsIn),
			"command_errors":     atomic.LoadInt64(&c.CommandErrors),
			"responses_out":      atomic.LoadInt64(&c.ResponsesOut),
		},

		"persistence": map[string]interface{}{
			"writes":           persists,
			"avg_write_lat_ms": persistAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.PersistLatencyMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.PersistErrors),
			"events_written":   atomic.LoadInt64(&c.EventsWritten),
		},

		"sim": map[string]interface{}{
			"ticks":              atomic.LoadInt64(&c.TickCount),
			"heartbeat_expiries": atomic.LoadInt64(&c.HeartbeatExpiries),
		},

		"oracle": map[string]interface{}{
			"calls":     atomic.LoadInt64(&c.OracleCalls),
			"fallbacks": atomic.LoadInt64(&c.OracleFallbacks),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		json.NewEncoder(w).Encode(collector.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP aldea_sync_connections Active sync connections\n")
		fmt.Fprintf(w, "# TYPE aldea_sync_connections gauge\n")
		fmt.Fprintf(w, "aldea_sync_connections %d\n\n", atomic.LoadInt64(&c.ConnectionsActive))

		fmt.Fprintf(w, "# HELP aldea_commands_total Total inbound sync commands\n")
		fmt.Fprintf(w, "# TYPE aldea_commands_total counter\n")
		fmt.Fprintf(w, "aldea_commands_total %d\n\n", atomic.LoadInt64(&c.CommandsIn))

		fmt.Fprintf(w, "# HELP aldea_command_errors Total failed sync commands\n")
		fmt.Fprintf(w, "# TYPE aldea_command_errors counter\n")
		fmt.Fprintf(w, "aldea_command_errors %d\n\n", atomic.LoadInt64(&c.CommandErrors))

		fmt.Fprintf(w, "# HELP aldea_persist_writes Total state document writes\n")
		fmt.Fprintf(w, "# TYPE aldea_persist_writes counter\n")
		fmt.Fprintf(w, "aldea_persist_writes %d\n\n", atomic.LoadInt64(&c.PersistCount))

		fmt.Fprintf(w, "# HELP aldea_persist_errors Total state document write errors\n")
		fmt.Fprintf(w, "# TYPE aldea_persist_errors counter\n")
		fmt.Fprintf(w, "aldea_persist_errors %d\n\n", atomic.LoadInt64(&c.PersistErrors))

		fmt.Fprintf(w, "# HELP aldea_events_written Total events appended to the ledger\n")
		fmt.Fprintf(w, "# TYPE aldea_events_written counter\n")
		fmt.Fprintf(w, "aldea_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP aldea_ticks_total Total world ticks\n")
		fmt.Fprintf(w, "# TYPE aldea_ticks_total counter\n")
		fmt.Fprintf(w, "aldea_ticks_total %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP aldea_heartbeat_expiries Agents that went stale\n")
		fmt.Fprintf(w, "# TYPE aldea_heartbeat_expiries counter\n")
		fmt.Fprintf(w, "aldea_heartbeat_expiries %d\n\n", atomic.LoadInt64(&c.HeartbeatExpiries))

		fmt.Fprintf(w, "# HELP aldea_oracle_calls Total decision oracle calls\n")
		fmt.Fprintf(w, "# TYPE aldea_oracle_calls counter\n")
		fmt.Fprintf(w, "aldea_oracle_calls %d\n", atomic.LoadInt64(&c.OracleCalls))
	}
}
