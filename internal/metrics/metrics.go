// Package metrics provides the measurement primitives shared by guardrails:
// single numeric observations, resident-set-size sampling, and forced
// collection around memory measurements.
package metrics

import (
	"bufio"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"time"
)

// Sample is a single numeric observation taken during a guardrail run.
type Sample struct {
	Value float64
	At    time.Time
}

// Series accumulates samples for one metric. Not safe for concurrent use
// except through Observe, which the watchdog calls from its heartbeat
// goroutine while the submitting goroutine is blocked in encode calls.
type Series struct {
	samples []Sample
}

func (s *Series) Observe(value float64) {
	s.samples = append(s.samples, Sample{Value: value, At: time.Now()})
}

func (s *Series) Len() int {
	return len(s.samples)
}

func (s *Series) Max() float64 {
	max := 0.0
	for _, sample := range s.samples {
		if sample.Value > max {
			max = sample.Value
		}
	}
	return max
}

func (s *Series) Last() (Sample, bool) {
	if len(s.samples) == 0 {
		return Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// ForceGC runs a full collection and returns freed pages to the OS, so a
// subsequent RSS reading reflects unreclaimed allocations rather than
// ordinary heap churn.
func ForceGC() {
	runtime.GC()
	debug.FreeOSMemory()
}

// RSSBytes reports the process resident set size. On Linux it reads VmRSS
// from /proc/self/status; elsewhere it falls back to runtime memory
// statistics, which exclude non-Go allocations but keep the delta
// measurement meaningful.
func RSSBytes() uint64 {
	if rss, ok := procSelfRSS(); ok {
		return rss
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Sys - ms.HeapReleased
}

func procSelfRSS() (uint64, bool) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, false
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return kb * 1024, true
	}
	return 0, false
}
