// Package pubsub streams graph update events to channel subscribers, one
// topic per node.
package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dd0wney/chainagg/pkg/chain"
)

// ErrShutdown is returned by Subscribe after Shutdown.
var ErrShutdown = errors.New("pubsub: shut down")

// DefaultBuffer is the channel capacity of a new subscription.
const DefaultBuffer = 100

// Observable is the observer hook of *chain.Graph and *chain.Synchronized.
type Observable interface {
	Observe(id string, fn chain.Observer) (cancel func(), err error)
}

// PubSub fans node update events out to subscribers
type PubSub struct {
	subscribers map[string]map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
	buffer      int
	dropped     atomic.Uint64
}

// Subscription receives the update events of one node
type Subscription struct {
	node      string
	channel   chan chain.Event
	ps        *PubSub
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPubSub creates a PubSub whose subscriptions buffer DefaultBuffer events
func NewPubSub() *PubSub {
	return NewPubSubWithBuffer(DefaultBuffer)
}

// NewPubSubWithBuffer creates a PubSub with the given subscription buffer
// size. A size below 1 is raised to 1.
func NewPubSubWithBuffer(size int) *PubSub {
	return &PubSub{
		subscribers: make(map[string]map[*Subscription]bool),
		shutdown:    make(chan struct{}),
		buffer:      max(size, 1),
	}
}

// Subscribe creates a subscription to node's events. It ends when ctx is
// cancelled, on Unsubscribe, or on Shutdown; the channel is then closed.
func (ps *PubSub) Subscribe(ctx context.Context, node string) (*Subscription, error) {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return nil, ErrShutdown
	}
	ps.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		node:    node,
		channel: make(chan chain.Event, ps.buffer),
		ps:      ps,
		ctx:     subCtx,
		cancel:  cancel,
	}

	ps.mu.Lock()
	if ps.subscribers[node] == nil {
		ps.subscribers[node] = make(map[*Subscription]bool)
	}
	ps.subscribers[node][sub] = true
	ps.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
		case <-ps.shutdown:
		}
		sub.Unsubscribe()
	}()

	return sub, nil
}

// Publish sends ev to every subscriber of ev.Node without blocking. Events
// for a full subscription are dropped and counted.
func (ps *PubSub) Publish(ev chain.Event) {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return
	}
	ps.shutdownMu.Unlock()

	// Sends are non-blocking, so they happen under the read lock; channels
	// are only closed under the write lock
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for sub := range ps.subscribers[ev.Node] {
		select {
		case sub.channel <- ev:
		default:
			ps.dropped.Add(1)
		}
	}
}

// Attach registers a publishing observer on each listed node of g. The
// returned detach func removes all of them. If any registration fails the
// ones already made are removed.
func (ps *PubSub) Attach(g Observable, ids ...string) (detach func(), err error) {
	cancels := make([]func(), 0, len(ids))
	detach = func() {
		for _, cancel := range cancels {
			cancel()
		}
	}

	publish := func(ev chain.Event) error {
		ps.Publish(ev)
		return nil
	}
	for _, id := range ids {
		cancel, err := g.Observe(id, publish)
		if err != nil {
			detach()
			return nil, err
		}
		cancels = append(cancels, cancel)
	}
	return detach, nil
}

// GetSubscriberCount returns the number of subscribers for a node
func (ps *PubSub) GetSubscriberCount(node string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[node])
}

// Dropped returns how many events were discarded because a subscriber's
// buffer was full.
func (ps *PubSub) Dropped() uint64 {
	return ps.dropped.Load()
}

// Shutdown closes all subscriptions and shuts down the PubSub
func (ps *PubSub) Shutdown() {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return
	}
	ps.isShutdown = true
	ps.shutdownMu.Unlock()

	close(ps.shutdown)

	ps.mu.Lock()
	for node := range ps.subscribers {
		for sub := range ps.subscribers[node] {
			sub.close()
		}
		delete(ps.subscribers, node)
	}
	ps.mu.Unlock()
}

// Node returns the node the subscription listens to
func (s *Subscription) Node() string {
	return s.node
}

// Channel returns the subscription's event channel
func (s *Subscription) Channel() <-chan chain.Event {
	return s.channel
}

// Unsubscribe removes the subscription
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()

	if s.ps.subscribers[s.node] != nil {
		delete(s.ps.subscribers[s.node], s)
		if len(s.ps.subscribers[s.node]) == 0 {
			delete(s.ps.subscribers, s.node)
		}
	}

	s.close()
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
