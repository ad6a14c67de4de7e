package app

import (
	"fmt"
	"time"

	"renderbase/renderer"
)

// fpsCounter produces one summary line per interval from the running frame stats.
type fpsCounter struct {
	interval time.Duration
	since    time.Time
	last     renderer.FrameStats
}

func newFPSCounter(start time.Time, interval time.Duration) *fpsCounter {
	return &fpsCounter{interval: interval, since: start}
}

func (f *fpsCounter) tick(now time.Time, stats renderer.FrameStats) (string, bool) {
	elapsed := now.Sub(f.since)
	if elapsed < f.interval {
		return "", false
	}
	rendered := stats.Rendered - f.last.Rendered
	line := fmt.Sprintf("%.1f fps (%d frames, %d skipped, %d swap chain recreations in %v)",
		averageFPS(rendered, elapsed), rendered,
		stats.Skipped-f.last.Skipped, stats.Recreated-f.last.Recreated, elapsed.Round(time.Millisecond))
	f.since = now
	f.last = stats
	return line, true
}

func averageFPS(frames uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(frames) / elapsed.Seconds()
}
