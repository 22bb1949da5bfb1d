// Package diagnostics reports process-level memory/CPU usage merged with
// per-component counters, the same "metrics map" shape
// PQConsensusEngine.GetPerformanceMetrics returns, generalized from a
// single consensus engine's verification-time/cache counters to this
// core's APQC/QRM/sequencer components.
package diagnostics

import (
	"runtime"
	"time"

	"github.com/fjl/memsize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/splendor-labs/qrms/apqc"
	"github.com/splendor-labs/qrms/qrm"
	"github.com/splendor-labs/qrms/sequencer"
)

// ComponentCounters are the call-site counters this core's components
// expose directly, mirroring GetPerformanceMetrics's "registered
// validators / cache size / beacon length" style per-component snapshot.
type ComponentCounters struct {
	APQCRotationCount    uint64
	APQCPhase            string
	QRMEra               string
	SequencerDeadLetters int
}

// ProcessStats is the process-wide resource snapshot.
type ProcessStats struct {
	HeapAllocBytes  uint64
	GoroutineCount  int
	ProcessCPUPct   float64
	SystemUsedBytes uint64
	SystemTotalBytes uint64
}

// Snapshot is one point-in-time diagnostics reading.
type Snapshot struct {
	Timestamp  time.Time
	Process    ProcessStats
	Components ComponentCounters
}

// Collect gathers a full Snapshot. engine/monitor/seq may be nil, in which
// case their counters are left at zero rather than the call failing —
// diagnostics should never be the reason a component can't start.
func Collect(engine *apqc.Engine, monitor *qrm.Monitor, seq *sequencer.Sequencer) Snapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snap := Snapshot{
		Timestamp: time.Now(),
		Process: ProcessStats{
			HeapAllocBytes: memStats.HeapAlloc,
			GoroutineCount: runtime.NumGoroutine(),
		},
	}

	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		snap.Process.ProcessCPUPct = pcts[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.Process.SystemUsedBytes = vm.Used
		snap.Process.SystemTotalBytes = vm.Total
	}

	if engine != nil {
		snap.Components.APQCRotationCount = engine.RotationCount()
		snap.Components.APQCPhase = engine.Status().Phase.String()
	}
	if monitor != nil {
		snap.Components.QRMEra = monitor.Era().String()
	}
	if seq != nil {
		snap.Components.SequencerDeadLetters = len(seq.DeadLetters())
	}

	return snap
}

// MemsizeReport returns memsize's deep-scan report of v, useful for
// diagnosing unexpected retained-memory growth in long-running
// components (e.g. the QRM indicator ring or the sequencer mempool).
func MemsizeReport(v interface{}) memsize.Sizes {
	return memsize.Scan(v)
}
