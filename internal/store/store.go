package store

import (
	"log/slog"
	"sync"
)

// DefaultMaxDepth is the default cascade depth limit.
const DefaultMaxDepth = 64

// Handler receives the new value of a key.
type Handler func(value any)

// Subscription identifies one registered handler. Go funcs are not
// comparable, so Unsubscribe takes the token Subscribe returned.
type Subscription uint64

type subscriber struct {
	id Subscription
	fn Handler
}

// Store is a reactive key/value hub.
//
// Thread-safety: all methods may be called from any goroutine, but handlers
// run on the goroutine that called Update and no lock is held while they
// run. Ordering guarantees hold per dispatching goroutine; the viewer calls
// every Store from its single event-loop goroutine.
type Store struct {
	mu       sync.Mutex
	values   map[string]any
	subs     map[string][]subscriber
	nextID   Subscription
	depth    int
	maxDepth int
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxDepth sets the maximum nesting of Update calls made from handlers.
func WithMaxDepth(depth int) Option {
	return func(s *Store) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used for dropped cascades.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	return NewWithValues(nil, opts...)
}

// NewWithValues creates a Store seeded with initial values. Seeding does
// not notify anyone.
func NewWithValues(initial map[string]any, opts ...Option) *Store {
	s := &Store{
		values:   make(map[string]any, len(initial)),
		subs:     make(map[string][]subscriber),
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for k, v := range initial {
		s.values[k] = v
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current value of key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Update sets key to value and notifies every subscriber of key, in
// subscription order, before returning.
func (s *Store) Update(key string, value any) {
	s.mu.Lock()
	if s.depth >= s.maxDepth {
		depth := s.depth
		s.mu.Unlock()
		s.logger.Error("store cascade too deep, dropping update",
			"key", key,
			"depth", depth,
			"max_depth", s.maxDepth,
		)
		return
	}

	s.values[key] = value
	snapshot := make([]subscriber, len(s.subs[key]))
	copy(snapshot, s.subs[key])
	s.depth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.depth--
		s.mu.Unlock()
	}()

	for _, sub := range snapshot {
		sub.fn(value)
	}
}

// Subscribe appends handler to the subscribers of key and returns its
// token. Each call registers a new subscription.
func (s *Store) Subscribe(key string, handler Handler) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs[key] = append(s.subs[key], subscriber{id: id, fn: handler})
	return id
}

// Unsubscribe removes the subscription from key. Removing a subscription
// that is not registered is a no-op.
func (s *Store) Unsubscribe(key string, sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.subs[key]
	for i, existing := range list {
		if existing.id != sub {
			continue
		}
		// Copy so an in-flight snapshot never observes the shift.
		next := make([]subscriber, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(s.subs, key)
		} else {
			s.subs[key] = next
		}
		return
	}
}

// SubscriberCount returns the number of subscribers of key.
func (s *Store) SubscriberCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[key])
}
