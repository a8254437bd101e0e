package media

import "sync"

// ProgressObserver receives the overall progress of one upload in 0..100.
type ProgressObserver interface {
	OnProgress(percent int)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(percent int)

func (f ProgressFunc) OnProgress(percent int) { f(percent) }

// progressTracker forwards only increases, clamped to 0..100.
type progressTracker struct {
	mu   sync.Mutex
	obs  ProgressObserver
	last int
	sent bool
}

func newProgressTracker(obs ProgressObserver) *progressTracker {
	return &progressTracker{obs: obs}
}

func (t *progressTracker) report(percent int) {
	if t.obs == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	t.mu.Lock()
	if t.sent && percent <= t.last {
		t.mu.Unlock()
		return
	}
	t.last = percent
	t.sent = true
	t.mu.Unlock()

	t.obs.OnProgress(percent)
}

// partProgress computes (completed + sent/length) / total * 100.
func partProgress(completed, total int, sent, length int64) int {
	if total <= 0 {
		return 100
	}
	fraction := 0.0
	if length > 0 {
		fraction = float64(sent) / float64(length)
		if fraction > 1 {
			fraction = 1
		}
	}
	return int((float64(completed) + fraction) / float64(total) * 100)
}
