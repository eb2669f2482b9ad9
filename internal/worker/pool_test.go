package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	if got := NewPool[int](5).Workers(); got != 5 {
		t.Errorf("expected 5 workers, got %d", got)
	}
	if got := NewPool[int](0).Workers(); got != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", got)
	}
	if got := NewPool[int](-1).Workers(); got != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", got)
	}
}

func TestPool_Run_PreservesOrder(t *testing.T) {
	pool := NewPool[int](4)

	jobs := make([]Job[int], 20)
	for i := range jobs {
		n := i
		jobs[i] = JobFunc[int](func(ctx context.Context) int {
			// later jobs finish first
			time.Sleep(time.Duration(20-n) * time.Millisecond)
			return n * n
		})
	}

	results, ok := pool.Run(context.Background(), jobs)

	for i := range jobs {
		if !ok[i] {
			t.Errorf("job %d did not run", i)
		}
		if results[i] != i*i {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*i)
		}
	}
}

func TestPool_Run_BoundsConcurrency(t *testing.T) {
	pool := NewPool[struct{}](3)

	var running, peak int32
	jobs := make([]Job[struct{}], 12)
	for i := range jobs {
		jobs[i] = JobFunc[struct{}](func(ctx context.Context) struct{} {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return struct{}{}
		})
	}

	pool.Run(context.Background(), jobs)

	if peak > 3 {
		t.Errorf("expected at most 3 concurrent jobs, saw %d", peak)
	}
}

func TestPool_Run_Empty(t *testing.T) {
	results, ok := NewPool[int](2).Run(context.Background(), nil)
	if len(results) != 0 || len(ok) != 0 {
		t.Errorf("expected empty results, got %v %v", results, ok)
	}
}

func TestPool_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed int32
	jobs := make([]Job[int], 10)
	for i := range jobs {
		jobs[i] = JobFunc[int](func(ctx context.Context) int {
			atomic.AddInt32(&executed, 1)
			return 1
		})
	}

	done := make(chan struct{})
	var ok []bool
	go func() {
		_, ok = NewPool[int](2).Run(ctx, jobs)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	ran := 0
	for _, v := range ok {
		if v {
			ran++
		}
	}
	if int32(ran) != atomic.LoadInt32(&executed) {
		t.Errorf("ok flags (%d) disagree with executed jobs (%d)", ran, executed)
	}
}
