// Package looptest provides a deterministic scheduler for tests.
package looptest

import (
	"sort"
	"time"

	"github.com/Geek-master-100/ai-customer-reception/internal/loop"
)

// Manual is a loop.Scheduler driven by the test. Posted callbacks run on
// Drain and timers fire on Advance, both on the calling goroutine.
type Manual struct {
	now     time.Duration
	seq     int
	queue   []func()
	pending []*manualTimer
}

var _ loop.Scheduler = (*Manual)(nil)

// NewManual creates an idle manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Post queues fn until the next Drain.
func (m *Manual) Post(fn func()) {
	m.queue = append(m.queue, fn)
}

// AfterFunc registers fn to run once Advance moves past d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) loop.Timer {
	m.seq++
	t := &manualTimer{at: m.now + d, seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// Drain runs queued callbacks, including ones queued while draining.
func (m *Manual) Drain() {
	for len(m.queue) > 0 {
		fn := m.queue[0]
		m.queue = m.queue[1:]
		fn()
	}
}

// Advance moves the clock forward, firing due timers in deadline order and
// draining the queue after each one.
func (m *Manual) Advance(d time.Duration) {
	m.Drain()
	target := m.now + d
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.at
		next.stopped = true
		next.fn()
		m.Drain()
	}
	m.now = target
}

// Pending returns the number of timers that have neither fired nor stopped.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(target time.Duration) *manualTimer {
	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.pending = live

	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at == m.pending[j].at {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].at < m.pending[j].at
	})
	if len(m.pending) == 0 || m.pending[0].at > target {
		return nil
	}
	return m.pending[0]
}

type manualTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}
