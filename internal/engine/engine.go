// Package engine provides the deterministic discrete-event simulation
// loop: a min-heap of (time, seq, event) triples dispatched in
// non-decreasing time order with FIFO tie-break, running until the
// queue drains or a MarketCloseEvent halts it in place (spec §4.2).
package engine

import (
	"container/heap"
	"fmt"

	"github.com/fairbook/lobsim/internal/domain"
)

// Handler processes one dispatched event and returns any new events it
// wishes to schedule. It runs to completion without suspending — the
// single concurrency rule of this simulator (spec §5).
type Handler func(event *domain.Event) []*domain.Event

// eventHeap orders events by (Time, Seq): the only comparator allowed
// to touch event ordering, so every tie-break lives in one place.
type eventHeap []*domain.Event

func (h eventHeap) Len() int      { return len(h) }
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(*domain.Event)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Engine is the min-heap scheduler. It owns the event queue, the
// simulation clock, the sequence counter, and the running flag — the
// only engine-internal state the spec names (§3 "Engine state").
type Engine struct {
	queue   eventHeap
	seq     int64
	running bool
	handler Handler

	Time            float64
	EventsProcessed uint64
}

// New creates a scheduler dispatching through handler. The engine
// starts running; a MarketCloseEvent flips it off in place.
func New(handler Handler) *Engine {
	e := &Engine{handler: handler, running: true}
	heap.Init(&e.queue)
	return e
}

// Schedule pushes an event, stamping it with the next sequence number.
// Scheduling multiple events at the same Time is explicitly permitted;
// dispatch order among them is FIFO by sequence (spec §4.2).
func (e *Engine) Schedule(event *domain.Event) {
	event.Seq = e.seq
	e.seq++
	heap.Push(&e.queue, event)
}

// Run pops the minimum (time, seq) event repeatedly, advances the
// clock, and dispatches until the queue drains or running goes false.
// A MarketCloseEvent sets running false and is not itself handed to
// the caller's Handler — remaining queued events are discarded, per
// spec §4.2/§4.3.
func (e *Engine) Run() {
	for e.queue.Len() > 0 && e.running {
		next := heap.Pop(&e.queue).(*domain.Event)
		if next.Time < e.Time {
			panic(fmt.Sprintf("engine: time regression: dispatched %v after clock reached %v", next.Time, e.Time))
		}
		e.Time = next.Time
		e.EventsProcessed++

		if next.Type == domain.EventMarketClose {
			e.running = false
			continue
		}

		for _, n := range e.handler(next) {
			e.Schedule(n)
		}
	}
}

// Running reports whether the engine would still dispatch further
// events (false once a MarketCloseEvent has been processed).
func (e *Engine) Running() bool { return e.running }

// Pending returns the number of events still queued.
func (e *Engine) Pending() int { return e.queue.Len() }
