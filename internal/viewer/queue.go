package viewer

import (
	"sync"

	"github.com/roach88/pageflow/internal/document"
	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
)

// eventKind distinguishes between event kinds.
type eventKind int

const (
	evLoad eventKind = iota + 1
	evSubmitPassword
	evCancel
	evLoadDone
	evResize
	evScroll
	evIntersection
	evJump
	evRotate
	evSetScale
	evZoomTo
	evRenderDone
)

func (k eventKind) String() string {
	switch k {
	case evLoad:
		return "load"
	case evSubmitPassword:
		return "submit-password"
	case evCancel:
		return "cancel"
	case evLoadDone:
		return "load-done"
	case evResize:
		return "resize"
	case evScroll:
		return "scroll"
	case evIntersection:
		return "intersection"
	case evJump:
		return "jump"
	case evRotate:
		return "rotate"
	case evSetScale:
		return "set-scale"
	case evZoomTo:
		return "zoom-to"
	case evRenderDone:
		return "render-done"
	default:
		return "unknown"
	}
}

// event is one input to the controller loop. Only the fields relevant to
// kind are set.
type event struct {
	kind eventKind

	page     int
	ratio    float64
	width    float64
	height   float64
	offset   float64
	scale    float64
	dir      plugin.Direction
	level    model.SpecialZoomLevel
	password string

	// Completions of asynchronous work. gen ties a completion to the
	// document load or render generation that started it.
	gen    uint64
	job    uint64
	doc    document.Document
	pages  []model.Descriptor
	result renderResult
	err    error
}

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so render workers and plugin handles never block
// when they post.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the loop.
type eventQueue struct {
	mu     sync.Mutex
	events []event
	closed bool
	signal chan struct{} // buffered, size 1
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
func (q *eventQueue) TryDequeue() (event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return event{}, false
	}

	e := q.events[0]

	// Drop the references held by the slot (surfaces, documents).
	q.events[0] = event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available. The
// channel is closed when the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will be enqueued.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
