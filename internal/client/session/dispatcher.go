package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

type subscription struct {
	observer Observer
	removed  atomic.Bool
}

type delivery struct {
	event Event
	subs  []*subscription
}

// dispatcher delivers events on its own goroutine in FIFO order.
type dispatcher struct {
	logger logging.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []delivery
	closed bool
	done   chan struct{}
}

func newDispatcher(logger logging.Logger) *dispatcher {
	d := &dispatcher{logger: logger, done: make(chan struct{})}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// enqueue never blocks on observers. Events enqueued after close are dropped.
func (d *dispatcher) enqueue(e Event, subs []*subscription) {
	if len(subs) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.queue = append(d.queue, delivery{event: e, subs: subs})
	d.cond.Signal()
}

func (d *dispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		next := d.queue[0]
		d.queue[0] = delivery{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		for _, s := range next.subs {
			if s.removed.Load() {
				continue
			}
			d.deliver(s.observer, next.event)
		}
	}
}

func (d *dispatcher) deliver(o Observer, e Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error(context.Background(), "observer panicked", "state", e.State.String(), "panic", fmt.Sprint(r))
		}
	}()
	o.OnStateChanged(e)
}

// close stops accepting events and waits until the queue is drained.
func (d *dispatcher) close() {
	d.mu.Lock()
	d.closed = true
	d.cond.Broadcast()
	d.mu.Unlock()
	<-d.done
}
