package runner

// RunStats tracks aggregate counters across a batch run.
type RunStats struct {
	Total       int
	Current     int
	Succeeded   int
	NonZero     int // player ran but exited non-zero; its output is kept
	Skipped     int
	Failed      int // player could not be launched
	OutputBytes int64
}

// Healthy reports whether the run should exit 0. Non-zero player exits only
// count against the run in strict mode.
func (s *RunStats) Healthy(strict bool) bool {
	if s.Failed > 0 {
		return false
	}
	return !strict || s.NonZero == 0
}
