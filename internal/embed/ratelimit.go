package embed

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
)

// TokenBucket is a FIFO-fair rate limiter sized in requests per minute with
// a burst allowance. Within this module it gates the media queue's analyzer
// calls (queue.Queue); the embedders in this package do not acquire from it,
// so embed requests are not rate limited. Waiters are granted tokens strictly
// in arrival order: a later caller never jumps ahead of an earlier one even
// if the earlier one needs more tokens.
type TokenBucket struct {
	mu         sync.Mutex
	cond       *sync.Cond
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	queue      *list.List // of *tbWaiter, front = next to be served
}

type tbWaiter struct {
	want float64
	done bool
}

// NewTokenBucket returns a bucket with capacity rpm/60*burst and refill rate
// rpm/60 tokens per second, starting full.
func NewTokenBucket(rpm, burst int) *TokenBucket {
	if rpm <= 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = 1
	}
	capacity := float64(rpm) / 60 * float64(burst)
	if capacity < 1 {
		capacity = 1
	}
	b := &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: float64(rpm) / 60,
		lastRefill: time.Now(),
		queue:      list.New(),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *TokenBucket) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
}

// Acquire blocks until n tokens are available, granting concurrent waiters
// in FIFO order, or returns a cancelled error if ctx is done first.
func (b *TokenBucket) Acquire(ctx context.Context, n int) error {
	if n <= 0 {
		n = 1
	}
	want := float64(n)

	b.mu.Lock()
	w := &tbWaiter{want: want}
	elem := b.queue.PushBack(w)
	b.mu.Unlock()

	// Wake waiters periodically so refill progress is noticed even with no
	// concurrent Acquire/Release traffic.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(25 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				b.cond.Broadcast()
			}
		}
	}()

	cancelled := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			close(cancelled)
			b.cond.Broadcast()
		case <-stop:
		}
	}()

	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		select {
		case <-cancelled:
			b.queue.Remove(elem)
			return errdefs.NewCancelled("rate limiter wait cancelled")
		default:
		}

		b.refillLocked()
		if b.queue.Front() == elem && b.tokens >= want {
			b.tokens -= want
			b.queue.Remove(elem)
			b.cond.Broadcast()
			return nil
		}
		b.cond.Wait()
	}
}
