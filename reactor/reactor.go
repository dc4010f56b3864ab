package reactor

import (
	"context"
	"sync"
	"time"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/trees/binaryheap"
)

// An Event is a schedulable unit of work. Events are created once and
// posted many times; a posted flag keeps an event from occupying more than
// one slot in the ready queue.
type Event struct {
	name    string
	handler func()
	posted  bool
}

// Name returns the debug name of the event.
func (ev *Event) Name() string {
	return ev.name
}

// A Timer is a one-shot timer armed on a reactor. Cancel prevents the
// handler from firing; canceling an already-fired timer is a no-op.
type Timer struct {
	deadline time.Time
	seq      uint64
	handler  func()
	canceled bool
}

// Cancel marks the timer as canceled. The reactor drops canceled timers
// when they surface at the top of the timer heap, so a canceled timer never
// keeps the loop waiting.
func (t *Timer) Cancel() {
	t.canceled = true
}

// Reactor is a single-threaded event loop: ready queue, timer heap and a
// count of in-flight background operations. Exactly one goroutine may run
// the loop; any goroutine may post.
type Reactor struct {
	mu       sync.Mutex
	ready    *arraylist.List // of *Event
	timers   *binaryheap.Heap
	seq      uint64
	inflight int
	notify   chan struct{}
}

// New creates an idle reactor.
func New() *Reactor {
	return &Reactor{
		ready: arraylist.New(),
		timers: binaryheap.NewWith(func(a, b interface{}) int {
			ta, tb := a.(*Timer), b.(*Timer)
			if ta.deadline.Before(tb.deadline) {
				return -1
			}
			if ta.deadline.After(tb.deadline) {
				return 1
			}
			// stable ordering for equal deadlines
			if ta.seq < tb.seq {
				return -1
			}
			if ta.seq > tb.seq {
				return 1
			}
			return 0
		}),
		notify: make(chan struct{}, 1),
	}
}

// NewEvent creates an event with a handler. The handler will run on the
// reactor loop each time the event is posted.
func (r *Reactor) NewEvent(name string, handler func()) *Event {
	return &Event{name: name, handler: handler}
}

// Post places ev into the ready queue, unless it is already there.
// Scheduling only: the handler runs on a later loop iteration, never
// synchronously from Post.
func (r *Reactor) Post(ev *Event) {
	r.mu.Lock()
	if ev.posted {
		r.mu.Unlock()
		return
	}
	ev.posted = true
	r.ready.Add(ev)
	r.mu.Unlock()
	tracer().P("event", ev.name).Debugf("posted")
	r.wake()
}

// Submit enqueues a one-shot closure onto the ready queue.
func (r *Reactor) Submit(name string, handler func()) {
	r.Post(&Event{name: name, handler: handler})
}

// After arms a one-shot timer firing after d.
func (r *Reactor) After(d time.Duration, handler func()) *Timer {
	r.mu.Lock()
	r.seq++
	t := &Timer{deadline: time.Now().Add(d), seq: r.seq, handler: handler}
	r.timers.Push(t)
	r.mu.Unlock()
	r.wake()
	return t
}

// Background runs work on its own goroutine and schedules the returned
// completion on the loop. The reactor counts the operation as in flight
// until the completion has been enqueued, so RunUntilIdle cannot return
// while the work is still pending.
func (r *Reactor) Background(name string, work func() func()) {
	r.mu.Lock()
	r.inflight++
	r.mu.Unlock()
	go func() {
		complete := work()
		r.mu.Lock()
		r.inflight--
		ev := &Event{name: name, handler: complete, posted: true}
		r.ready.Add(ev)
		r.mu.Unlock()
		r.wake()
	}()
}

func (r *Reactor) wake() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// pop removes and returns the first ready event, or nil.
func (r *Reactor) pop() *Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready.Size() == 0 {
		return nil
	}
	v, _ := r.ready.Get(0)
	r.ready.Remove(0)
	ev := v.(*Event)
	ev.posted = false
	return ev
}

// drain runs ready handlers until the queue is empty. Handlers run outside
// the lock; they may post further events, which drain picks up too.
func (r *Reactor) drain() {
	for {
		ev := r.pop()
		if ev == nil {
			return
		}
		tracer().P("event", ev.name).Debugf("dispatch")
		ev.handler()
	}
}

// nextDeadline drops canceled timers from the top of the heap and returns
// the earliest live deadline.
func (r *Reactor) nextDeadline() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		v, ok := r.timers.Peek()
		if !ok {
			return time.Time{}, false
		}
		t := v.(*Timer)
		if t.canceled {
			r.timers.Pop()
			continue
		}
		return t.deadline, true
	}
}

// fireDue pops and runs every timer whose deadline has passed.
func (r *Reactor) fireDue() {
	now := time.Now()
	for {
		r.mu.Lock()
		v, ok := r.timers.Peek()
		if !ok {
			r.mu.Unlock()
			return
		}
		t := v.(*Timer)
		if !t.canceled && t.deadline.After(now) {
			r.mu.Unlock()
			return
		}
		r.timers.Pop()
		r.mu.Unlock()
		if t.canceled {
			continue
		}
		tracer().Debugf("timer fired")
		t.handler()
	}
}

func (r *Reactor) idle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready.Size() == 0 && r.inflight == 0 && r.timers.Size() == 0
}

// RunUntilIdle processes events, timers and background completions until
// nothing remains outstanding, then returns. Canceled timers do not count
// as outstanding.
func (r *Reactor) RunUntilIdle() {
	for {
		r.drain()
		r.fireDue()
		deadline, hasTimer := r.nextDeadline()
		if !hasTimer && r.idle() {
			return
		}
		var tch <-chan time.Time
		if hasTimer {
			d := time.Until(deadline)
			if d <= 0 {
				continue
			}
			timer := time.NewTimer(d)
			tch = timer.C
			select {
			case <-r.notify:
				timer.Stop()
			case <-tch:
				r.fireDue()
			}
			continue
		}
		<-r.notify
	}
}

// Run processes events and timers until the context is canceled.
func (r *Reactor) Run(ctx context.Context) {
	for {
		r.drain()
		r.fireDue()
		deadline, hasTimer := r.nextDeadline()
		var tch <-chan time.Time
		var stop func() bool
		if hasTimer {
			d := time.Until(deadline)
			if d <= 0 {
				continue
			}
			timer := time.NewTimer(d)
			tch = timer.C
			stop = timer.Stop
		}
		select {
		case <-ctx.Done():
			if stop != nil {
				stop()
			}
			return
		case <-r.notify:
			if stop != nil {
				stop()
			}
		case <-tch:
			r.fireDue()
		}
	}
}
