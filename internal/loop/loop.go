// Package loop provides the single coordinating loop that owns all mutable
// desk state. Work from other goroutines is marshaled onto the loop with Post.
package loop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrStopped is returned when work is submitted to a loop that has exited.
var ErrStopped = errors.New("loop stopped")

// Timer is a pending deferred callback.
type Timer interface {
	// Stop prevents the callback from running. Returns false if it already ran
	// or was already stopped.
	Stop() bool
}

// Scheduler schedules callbacks onto a single logical thread.
type Scheduler interface {
	// Post queues fn to run on the loop.
	Post(fn func())
	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop executes queued callbacks one at a time in submission order.
type Loop struct {
	log   zerolog.Logger
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

var _ Scheduler = (*Loop)(nil)

// New creates a loop with the given queue size.
func New(log zerolog.Logger, size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{
		log:   log,
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Run executes callbacks until ctx is cancelled. A panicking callback is
// recovered and logged so one faulty session cannot stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Msg("recovered panic in loop callback")
		}
	}()
	fn()
}

// Post queues fn. Post blocks while the queue is full and drops fn once the
// loop has exited.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
		l.log.Debug().Msg("dropping callback posted after loop exit")
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})

	select {
	case l.queue <- func() {
		defer close(finished)
		fn()
	}:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc runs fn on the loop after d. Stopping the timer after it fired but
// before the loop ran fn still prevents fn from running.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &timer{}
	t.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.claim() {
				fn()
			}
		})
	})
	return t
}

type timer struct {
	mu    sync.Mutex
	t     *time.Timer
	ended bool
}

// claim marks the timer as fired. Returns false if it was stopped first.
func (t *timer) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ended {
		return false
	}
	t.ended = true
	return true
}

func (t *timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ended {
		return false
	}
	t.ended = true
	t.t.Stop()
	return true
}
