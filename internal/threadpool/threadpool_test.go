package threadpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsAllTasks(t *testing.T) {
	p := New(4, 64)

	const n = 500
	var completed atomic.Int64
	for i := 0; i < n; i++ {
		p.Submit(func() { completed.Add(1) })
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if got := completed.Load(); got != n {
		t.Fatalf("completed = %d, want %d", got, n)
	}
}

func TestSubmitAfterShutdownPanics(t *testing.T) {
	p := New(1, 8)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Submit after Shutdown should panic")
		}
	}()
	p.Submit(func() {})
}

func TestTrySubmitRejectsWhenFull(t *testing.T) {
	p := New(0, 2)
	block := make(chan struct{})
	p.Submit(func() { <-block })

	accepted := 0
	for i := 0; i < 100; i++ {
		if p.TrySubmit(func() {}) {
			accepted++
		}
	}
	close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.Shutdown(ctx)

	if accepted == 100 {
		t.Fatal("expected at least one TrySubmit to be rejected under a bounded queue")
	}
}
