// Package schedule provides repeating callbacks driven by a frame loop.
//
// A Timeline does not own a goroutine. Its owner advances it once per frame
// and due callbacks run synchronously inside Advance. The game loop and tests
// therefore share one code path, and a session never has two callbacks
// running at once.
package schedule

import "time"

// Handle cancels a scheduled callback. Cancel is idempotent.
type Handle interface {
	Cancel()
}

// Scheduler registers repeating callbacks.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Handle
}

// job is one repeating callback.
type job struct {
	interval  time.Duration
	next      time.Duration // Timeline time of the next firing
	fn        func()
	seq       uint64 // Registration order, breaks ties between equal due times
	cancelled bool
}

// Cancel stops the job from firing again, even later in the current Advance.
func (j *job) Cancel() {
	j.cancelled = true
}

// Timeline is a simulated clock with repeating jobs.
type Timeline struct {
	now  time.Duration
	jobs []*job
	seq  uint64
}

// Compile-time check that Timeline implements Scheduler.
var _ Scheduler = (*Timeline)(nil)

// NewTimeline creates a timeline starting at zero.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Every runs fn each time interval elapses on the timeline, starting one
// interval from now. It panics if interval is not positive, like time.NewTicker.
func (t *Timeline) Every(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		panic("schedule: non-positive interval for Every")
	}
	t.seq++
	j := &job{
		interval: interval,
		next:     t.now + interval,
		fn:       fn,
		seq:      t.seq,
	}
	t.jobs = append(t.jobs, j)
	return j
}

// Advance moves the timeline forward by delta and fires every job that
// becomes due, earliest first. A job that falls behind fires once per elapsed
// interval.
func (t *Timeline) Advance(delta time.Duration) {
	if delta < 0 {
		return
	}
	target := t.now + delta
	for {
		j := t.nextDue(target)
		if j == nil {
			break
		}
		t.now = j.next
		j.next += j.interval
		j.fn()
	}
	t.now = target
	t.compact()
}

// nextDue returns the earliest live job due at or before target.
func (t *Timeline) nextDue(target time.Duration) *job {
	var best *job
	for _, j := range t.jobs {
		if j.cancelled || j.next > target {
			continue
		}
		if best == nil || j.next < best.next || (j.next == best.next && j.seq < best.seq) {
			best = j
		}
	}
	return best
}

// compact drops cancelled jobs.
func (t *Timeline) compact() {
	kept := t.jobs[:0]
	for _, j := range t.jobs {
		if !j.cancelled {
			kept = append(kept, j)
		}
	}
	clear(t.jobs[len(kept):])
	t.jobs = kept
}

// Now returns the current timeline time.
func (t *Timeline) Now() time.Duration {
	return t.now
}

// Pending returns the number of live jobs.
func (t *Timeline) Pending() int {
	n := 0
	for _, j := range t.jobs {
		if !j.cancelled {
			n++
		}
	}
	return n
}
