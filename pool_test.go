package notepress

import (
	"runtime"
	"testing"
)

func TestNewPublisherPoolFloorsSize(t *testing.T) {
	t.Parallel()

	pool := NewPublisherPool(0)
	defer pool.Close()

	if pool.Size() != 1 {
		t.Errorf("Size() = %d, want 1 for a non-positive request", pool.Size())
	}
}

func TestPoolAcquireReusesReleased(t *testing.T) {
	t.Parallel()

	pool := NewPublisherPool(1)
	defer pool.Close()

	first := pool.Acquire()
	pool.Release(first)
	second := pool.Acquire()
	pool.Release(second)

	if first != second {
		t.Error("Acquire() after Release() returned a different publisher")
	}
}

func TestPoolCreatesUpToCapacity(t *testing.T) {
	t.Parallel()

	pool := NewPublisherPool(3)
	defer pool.Close()

	a := pool.Acquire()
	b := pool.Acquire()
	c := pool.Acquire()

	if a == b || b == c || a == c {
		t.Error("Acquire() returned shared publishers before capacity was reached")
	}

	pool.Release(a)
	pool.Release(b)
	pool.Release(c)
}

func TestPoolCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	pool := NewPublisherPool(2)
	pool.Release(pool.Acquire())

	if err := pool.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestPoolReleaseAfterCloseDropsPublisher(t *testing.T) {
	t.Parallel()

	pool := NewPublisherPool(1)
	pub := pool.Acquire()

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// A holder handing its publisher back after shutdown must not panic
	// on the closed channel.
	pool.Release(pub)
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit wins",
			workers: 5,
			want:    5,
		},
		{
			name:    "explicit above cap is respected",
			workers: 12,
			want:    12,
		},
		{
			name:    "auto stays within bounds",
			workers: 0,
			want:    boundedAuto(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func boundedAuto() int {
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
