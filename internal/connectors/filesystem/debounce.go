package filesystem

import "time"

// firing is a debounce timer reporting that path has been quiet.
type firing struct {
	path string
	gen  uint64
}

type pendingFile struct {
	timer *time.Timer
	gen   uint64
}

// debouncer coalesces bursts of events per path. It is owned by a single
// goroutine; only the timer callbacks run elsewhere and they only send on
// ready.
type debouncer struct {
	delay   time.Duration
	ready   chan firing
	done    chan struct{}
	pending map[string]*pendingFile
	gen     uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		ready:   make(chan firing),
		done:    make(chan struct{}),
		pending: make(map[string]*pendingFile),
	}
}

// touch restarts the quiet period for path. A timer that already fired is
// superseded by a new generation, so its firing is dropped by accept.
func (d *debouncer) touch(path string) {
	if p, ok := d.pending[path]; ok && p.timer.Stop() {
		p.timer.Reset(d.delay)
		return
	}

	d.gen++
	f := firing{path: path, gen: d.gen}
	d.pending[path] = &pendingFile{
		gen: f.gen,
		timer: time.AfterFunc(d.delay, func() {
			select {
			case d.ready <- f:
			case <-d.done:
			}
		}),
	}
}

// accept reports whether f is the current firing for its path and clears it.
func (d *debouncer) accept(f firing) bool {
	p, ok := d.pending[f.path]
	if !ok || p.gen != f.gen {
		return false
	}
	delete(d.pending, f.path)
	return true
}

// stop cancels pending timers and releases callbacks blocked on ready.
func (d *debouncer) stop() {
	close(d.done)
	for _, p := range d.pending {
		p.timer.Stop()
	}
}
