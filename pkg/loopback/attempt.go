package loopback

import (
	"context"
	"sync"
)

// Attempt is the single-slot future for one pending login. The listener
// resolves it exactly once with the first valid callback; Wait blocks
// until then or until the context is cancelled.
type Attempt struct {
	listener *Listener
	ch       chan Callback
	once     sync.Once
}

func newAttempt(l *Listener) *Attempt {
	return &Attempt{
		listener: l,
		ch:       make(chan Callback, 1),
	}
}

// resolve delivers the callback at most once.
func (a *Attempt) resolve(cb Callback) {
	a.once.Do(func() {
		a.ch <- cb
	})
}

// Wait blocks until the provider callback arrives or ctx is done. A
// cancelled wait clears the listener's pending slot so a fresh attempt
// can begin.
func (a *Attempt) Wait(ctx context.Context) (Callback, error) {
	select {
	case cb := <-a.ch:
		return cb, nil
	case <-ctx.Done():
		a.Cancel()
		return Callback{}, ctx.Err()
	}
}

// Cancel abandons the attempt and frees the pending slot. Safe to call
// after resolution; a late callback is then dropped by the listener.
func (a *Attempt) Cancel() {
	a.listener.clearPending(a)
}
