package track

const maxRunningPercent = 99

// progressReporter throttles and clamps progress reports for one run.
type progressReporter struct {
	estimated int
	every     int
	fn        ProgressFunc
	last      int
}

func newProgressReporter(estimated, every int, fn ProgressFunc) *progressReporter {
	return &progressReporter{estimated: estimated, every: every, fn: fn}
}

// window is called after each processed window.
func (p *progressReporter) window(processed int) {
	if processed%p.every != 0 {
		return
	}
	p.emit(runningPercent(processed, p.estimated))
}

// finish emits the terminal 100.
func (p *progressReporter) finish() {
	p.emit(100)
}

func (p *progressReporter) emit(percent int) {
	if p.fn == nil {
		return
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.fn(percent)
}

// runningPercent is min(99, floor(processed/estimated*100)), or 0 when the
// total is unknown.
func runningPercent(processed, estimated int) int {
	if estimated <= 0 {
		return 0
	}
	pct := processed * 100 / estimated
	if pct > maxRunningPercent {
		return maxRunningPercent
	}
	return pct
}
