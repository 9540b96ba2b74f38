package toast

import (
	"container/heap"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/carehub/storefront/pkg/logger"
	"github.com/carehub/storefront/pkg/metrics"
)

const subscriberBuffer = 32

// Option customises a Queue.
type Option func(*Queue)

// WithClock replaces the wall clock, primarily for tests.
func WithClock(clock Clock) Option {
	return func(q *Queue) {
		if clock != nil {
			q.clock = clock
		}
	}
}

// WithDefaultDuration overrides the lifetime applied to descriptors without
// DurationMs. Values above MaxDuration are capped.
func WithDefaultDuration(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.defaultDuration = min(d, MaxDuration)
		}
	}
}

// WithLogger overrides the module logger.
func WithLogger(log *zap.Logger) Option {
	return func(q *Queue) {
		if log != nil {
			q.log = log
		}
	}
}

// Queue is the ordered set of visible toasts. It is safe for concurrent use;
// every mutation is serialised so the queue behaves as a single writer.
type Queue struct {
	mu    sync.Mutex
	items []Notification

	// pending expiries ordered by (deadline, seq); byID indexes them for cancellation.
	expiries expiryHeap
	byID     map[uint64]*expiry
	timer    Timer
	armedFor time.Time
	timerGen uint64

	lastID uint64
	seq    uint64

	clock           Clock
	defaultDuration time.Duration
	log             *zap.Logger

	subscribers []chan Event
	closed      bool
}

// NewQueue constructs an empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		items:           make([]Notification, 0),
		byID:            make(map[uint64]*expiry),
		clock:           SystemClock(),
		defaultDuration: DefaultDuration,
		log:             logger.WithModule("toast"),
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Enqueue appends a notification built from d and schedules its removal after
// its duration. The returned copy carries the assigned id; callers are free to
// ignore it. Enqueue on a closed queue is ignored and returns a zero Notification.
func (q *Queue) Enqueue(d Descriptor) Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return Notification{}
	}

	n := d.normalize(q.defaultDuration)
	q.lastID++
	n.ID = q.lastID

	q.items = append(q.items, n)
	q.schedule(n)

	metrics.ToastsEnqueued.Inc()
	metrics.ToastsActive.Inc()
	q.log.Debug("toast enqueued",
		zap.Uint64("id", n.ID),
		zap.String("title", n.Title),
		zap.Int64("duration_ms", n.DurationMs),
	)

	q.notify(Event{Type: EventAdded, Notification: n, Size: len(q.items)})
	return n
}

// Dismiss removes the notification with the given id and cancels its pending
// expiry. Dismissing an id that is not present is a no-op; the return value
// reports whether anything was removed.
func (q *Queue) Dismiss(id uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	n, ok := q.removeLocked(id)
	if !ok {
		return false
	}

	if e, pending := q.byID[id]; pending {
		heap.Remove(&q.expiries, e.index)
		delete(q.byID, id)
		q.rearm()
	}

	metrics.ToastsRemoved.WithLabelValues("dismissed").Inc()
	metrics.ToastsActive.Dec()
	q.log.Debug("toast dismissed", zap.Uint64("id", id))

	q.notify(Event{Type: EventDismissed, Notification: n, Size: len(q.items)})
	return true
}

// List returns a copy of the visible notifications in display order.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Get returns the notification with the given id if it is still visible.
func (q *Queue) Get(id uint64) (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := q.indexOf(id); i >= 0 {
		return q.items[i], true
	}
	return Notification{}, false
}

// Len returns the number of visible notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear removes every notification and cancels all pending expiries.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0
	}

	count := q.resetLocked()
	if count > 0 {
		metrics.ToastsRemoved.WithLabelValues("cleared").Add(float64(count))
		metrics.ToastsActive.Sub(float64(count))
		q.notify(Event{Type: EventCleared, Size: 0})
	}
	return count
}

// Subscribe returns a channel receiving change events. Slow subscribers miss
// events rather than blocking the queue.
func (q *Queue) Subscribe() <-chan Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if q.closed {
		close(ch)
		return ch
	}
	q.subscribers = append(q.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a subscription.
func (q *Queue) Unsubscribe(ch <-chan Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, sub := range q.subscribers {
		if sub == ch {
			q.subscribers = append(q.subscribers[:i], q.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close stops the scheduler, drops all notifications and closes subscriber channels.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true

	if count := q.resetLocked(); count > 0 {
		metrics.ToastsActive.Sub(float64(count))
	}

	for _, ch := range q.subscribers {
		close(ch)
	}
	q.subscribers = nil
}

func (q *Queue) schedule(n Notification) {
	q.seq++
	e := &expiry{
		id:       n.ID,
		deadline: q.clock.Now().Add(n.Duration()),
		seq:      q.seq,
	}
	heap.Push(&q.expiries, e)
	q.byID[n.ID] = e
	q.rearm()
}

// rearm points the single timer at the earliest pending deadline.
func (q *Queue) rearm() {
	if len(q.expiries) == 0 {
		q.stopTimer()
		return
	}

	next := q.expiries[0].deadline
	if q.timer != nil && q.armedFor.Equal(next) {
		return
	}

	q.stopTimer()
	wait := next.Sub(q.clock.Now())
	if wait < 0 {
		wait = 0
	}
	q.timerGen++
	gen := q.timerGen
	q.timer = q.clock.AfterFunc(wait, func() { q.expireDue(gen) })
	q.armedFor = next
}

func (q *Queue) stopTimer() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.armedFor = time.Time{}
}

// expireDue runs on the timer and removes every notification whose deadline
// has passed, earliest deadline first and scheduling order on ties.
func (q *Queue) expireDue(gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	now := q.clock.Now()
	for len(q.expiries) > 0 && !q.expiries[0].deadline.After(now) {
		e := heap.Pop(&q.expiries).(*expiry)
		delete(q.byID, e.id)

		n, ok := q.removeLocked(e.id)
		if !ok {
			continue
		}

		metrics.ToastsRemoved.WithLabelValues("expired").Inc()
		metrics.ToastsActive.Dec()
		q.log.Debug("toast expired", zap.Uint64("id", e.id))
		q.notify(Event{Type: EventExpired, Notification: n, Size: len(q.items)})
	}

	// A stopped timer may still fire late; only the current one is forgotten here.
	if gen == q.timerGen {
		q.timer = nil
		q.armedFor = time.Time{}
	}
	q.rearm()
}

func (q *Queue) resetLocked() int {
	count := len(q.items)
	q.items = make([]Notification, 0)
	q.expiries = nil
	q.byID = make(map[uint64]*expiry)
	q.stopTimer()
	return count
}

func (q *Queue) removeLocked(id uint64) (Notification, bool) {
	i := q.indexOf(id)
	if i < 0 {
		return Notification{}, false
	}
	n := q.items[i]
	q.items = append(q.items[:i], q.items[i+1:]...)
	return n, true
}

func (q *Queue) indexOf(id uint64) int {
	for i := range q.items {
		if q.items[i].ID == id {
			return i
		}
	}
	return -1
}

// notify sends an event to all subscribers without blocking.
func (q *Queue) notify(event Event) {
	for _, ch := range q.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
