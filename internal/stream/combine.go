package stream

import (
	"github.com/ethereum/go-ethereum/event"
)

// CombineLatest publishes fn(a, b) on the returned subject whenever either
// source publishes, once both sources hold a value. Every source update is
// merged with the latest value of the other source; only subscribers of the
// result may skip intermediate results. The result subject is closed when the
// returned subscription is cancelled or either source closes.
func CombineLatest[A, B, R any](a *Subject[A], b *Subject[B], fn func(A, B) R) (*Subject[R], event.Subscription) {
	out := NewSubject[R]()
	chA, subA := a.subscribeAll()
	chB, subB := b.subscribeAll()

	sub := event.NewSubscription(func(quit <-chan struct{}) error {
		defer out.Close()
		defer subA.Unsubscribe()
		defer subB.Unsubscribe()

		var (
			lastA      A
			lastB      B
			hasA, hasB bool
		)
		for {
			select {
			case lastA = <-chA:
				hasA = true
			case lastB = <-chB:
				hasB = true
			case <-subA.Err():
				return nil
			case <-subB.Err():
				return nil
			case <-quit:
				return nil
			}
			if hasA && hasB {
				out.Publish(fn(lastA, lastB))
			}
		}
	})
	return out, sub
}
