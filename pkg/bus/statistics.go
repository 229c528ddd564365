package bus

import "time"

// Statistics is a snapshot of the router's cumulative counters.
type Statistics struct {
	RunTime       time.Duration
	PostCount     uint64
	PostFails     uint64
	DispatchCount uint64
	DispatchFails uint64
}

// Throughput is the dispatch rate over the time the router actually spent
// dispatching, zero before the first drain.
func (s Statistics) Throughput() float64 {
	if s.RunTime <= 0 {
		return 0
	}
	return float64(s.DispatchCount) / s.RunTime.Seconds()
}
