package ring

import (
	"sort"
	"sync"
	"testing"
)

func TestNewRejectsZeroCapacity(t *testing.T) {
	if _, err := NewSPSC[int](0); err != ErrInvalidCapacity {
		t.Fatalf("NewSPSC(0) err = %v, want ErrInvalidCapacity", err)
	}
	if _, err := NewMPSC[int](0); err != ErrInvalidCapacity {
		t.Fatalf("NewMPSC(0) err = %v, want ErrInvalidCapacity", err)
	}
	if _, err := NewSPMC[int](0); err != ErrInvalidCapacity {
		t.Fatalf("NewSPMC(0) err = %v, want ErrInvalidCapacity", err)
	}
}

func TestCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	q, err := NewSPSC[int](5)
	if err != nil {
		t.Fatal(err)
	}
	if q.Cap() != 8 {
		t.Fatalf("Cap() = %d, want 8", q.Cap())
	}
}

func TestSPSCFIFOOrderAndFullEmpty(t *testing.T) {
	q, _ := NewSPSC[int](4)

	for i := 0; i < 4; i++ {
		if !q.TryPush(i) {
			t.Fatalf("TryPush(%d) failed while queue should have room", i)
		}
	}
	if q.TryPush(99) {
		t.Fatal("TryPush should fail once the queue is full")
	}
	for i := 0; i < 4; i++ {
		v, ok := q.TryPop()
		if !ok || v != i {
			t.Fatalf("TryPop() = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := q.TryPop(); ok {
		t.Fatal("TryPop should fail once the queue is empty")
	}
}

func TestSPSCConcurrentProducerConsumer(t *testing.T) {
	q, _ := NewSPSC[int](16)
	const n = 10000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push(i)
		}
	}()

	received := make([]int, 0, n)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			received = append(received, q.Pop())
		}
	}()

	wg.Wait()
	for i, v := range received {
		if v != i {
			t.Fatalf("received[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestMPSCManyProducersOneConsumer(t *testing.T) {
	q, _ := NewMPSC[int](64)
	const producers = 8
	const perProducer = 2000
	const total = producers * perProducer

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		base := p * perProducer
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(base + i)
			}
		}(base)
	}

	received := make([]int, 0, total)
	done := make(chan struct{})
	go func() {
		for len(received) < total {
			received = append(received, q.Pop())
		}
		close(done)
	}()

	wg.Wait()
	<-done

	sort.Ints(received)
	for i, v := range received {
		if v != i {
			t.Fatalf("missing or duplicate element: received[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestSPMCOneProducerManyConsumers(t *testing.T) {
	q, _ := NewSPMC[int](64)
	const total = 16000
	const consumers = 8

	go func() {
		for i := 0; i < total; i++ {
			q.Push(i)
		}
	}()

	var mu sync.Mutex
	received := make([]int, 0, total)
	var wg sync.WaitGroup
	wg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer wg.Done()
			for {
				mu.Lock()
				if len(received) >= total {
					mu.Unlock()
					return
				}
				mu.Unlock()
				v, ok := q.TryPop()
				if !ok {
					continue
				}
				mu.Lock()
				received = append(received, v)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.Ints(received)
	for i, v := range received {
		if v != i {
			t.Fatalf("missing or duplicate element: received[%d] = %d, want %d", i, v, i)
		}
	}
}
