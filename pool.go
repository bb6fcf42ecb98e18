package notepress

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing bounds.
const (
	// MinPoolSize is the floor for any resolved pool size.
	MinPoolSize = 1

	// MaxPoolSize bounds how many concurrent browser sessions a pool
	// may hold open at once.
	MaxPoolSize = 8

	// cpuDivisor reserves part of the CPU budget for the Chrome
	// processes the publishers drive.
	cpuDivisor = 2
)

// PublisherPool hands out Publishers for concurrent publishing runs.
// Each publisher drives its own browser session, so holders never
// contend on a shared editor page. Publishers are built lazily on first
// acquire.
type PublisherPool struct {
	size       int
	opts       []Option
	publishers []*Publisher
	sem        chan *Publisher
	mu         sync.Mutex
	created    int
	closed     bool
}

// NewPublisherPool creates a pool that will hold at most n Publishers,
// each constructed with the given options. Sizes below one are raised
// to one.
func NewPublisherPool(n int, opts ...Option) *PublisherPool {
	if n < 1 {
		n = 1
	}

	return &PublisherPool{
		size:       n,
		opts:       opts,
		publishers: make([]*Publisher, 0, n),
		sem:        make(chan *Publisher, n),
	}
}

// Acquire takes a publisher from the pool, building a new one while the
// pool is under capacity. At capacity it blocks until a Release.
func (p *PublisherPool) Acquire() *Publisher {
	select {
	case pub := <-p.sem:
		return pub
	default:
	}

	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Construction can be slow (options, clients); keep it outside
		// the lock.
		pub := New(p.opts...)

		p.mu.Lock()
		p.publishers = append(p.publishers, pub)
		p.mu.Unlock()

		return pub
	}
	p.mu.Unlock()

	return <-p.sem
}

// Release returns a publisher to the pool. After Close it is a no-op.
// The send stays under the lock so it cannot race a concurrent Close of
// the channel; it never blocks there because the channel's capacity
// matches the number of publishers that can circulate.
func (p *PublisherPool) Release(pub *Publisher) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- pub
}

// Close shuts down every publisher the pool ever created and joins
// their errors. Further Release calls are ignored.
func (p *PublisherPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	publishers := p.publishers
	p.mu.Unlock()

	var errs []error
	for _, pub := range publishers {
		if err := pub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *PublisherPool) Size() int {
	return p.size
}

// ResolvePoolSize picks a pool size: an explicit worker count wins, and
// zero means derive one from GOMAXPROCS, clamped to the pool bounds.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
