// Package stream provides hot, replay-latest value streams.
package stream

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"
)

// Subject holds the latest published value and fans it out to subscribers.
// New subscribers immediately receive the latest value, if any.
// Delivery is last-value-wins: a subscriber that falls behind only sees the newest value.
type Subject[T any] struct {
	mu     sync.Mutex
	feed   event.FeedOf[T]
	scope  event.SubscriptionScope
	latest T
	has    bool
	closed bool
}

// NewSubject creates an empty subject
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// NewSubjectWith creates a subject that already holds v
func NewSubjectWith[T any](v T) *Subject[T] {
	return &Subject[T]{latest: v, has: true}
}

// Publish replaces the latest value and notifies subscribers. No-op after Close.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.latest = v
	s.has = true
	s.feed.Send(v)
}

// Latest returns the latest value and whether one was published yet
func (s *Subject[T]) Latest() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.has
}

// Subscribe returns a channel that receives the latest value followed by every
// later publication. The channel is closed when the subscription is cancelled
// or the subject is closed.
func (s *Subject[T]) Subscribe() (<-chan T, event.Subscription) {
	in := make(chan T)
	out := make(chan T, 1)

	s.mu.Lock()
	if s.has {
		out <- s.latest
	}
	if s.closed {
		s.mu.Unlock()
		close(out)
		return out, event.NewSubscription(func(<-chan struct{}) error { return nil })
	}
	sub := s.scope.Track(s.feed.Subscribe(in))
	s.mu.Unlock()

	go forward(in, out, sub)
	return out, sub
}

// subscribeAll is the lossless counterpart of Subscribe: the latest value, then
// every publication in order. Publish blocks until the receiver takes the value,
// so the receiver must keep draining until it unsubscribes.
func (s *Subject[T]) subscribeAll() (<-chan T, event.Subscription) {
	ch := make(chan T, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.has {
		ch <- s.latest
	}
	if s.closed {
		return ch, event.NewSubscription(func(<-chan struct{}) error { return nil })
	}
	return ch, s.scope.Track(s.feed.Subscribe(ch))
}

// Close cancels every subscription. Later publications are dropped.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.scope.Close()
}

// forward moves values from the feed to out, replacing an unread value with a newer one.
func forward[T any](in <-chan T, out chan T, sub event.Subscription) {
	defer close(out)
	for {
		select {
		case v := <-in:
			select {
			case out <- v:
			default:
				select {
				case <-out:
				default:
				}
				out <- v
			}
		case <-sub.Err():
			return
		}
	}
}
