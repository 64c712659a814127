package containers

import "testing"

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if err := rq.Enqueue(4); err != ErrQueueFull {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	for i := 1; i <= 3; i++ {
		v, err := rq.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if v != i {
			t.Errorf("Dequeue: expected %d, got %d", i, v)
		}
	}
	if _, err := rq.Dequeue(); err != ErrQueueEmpty {
		t.Errorf("expected ErrQueueEmpty, got %v", err)
	}
}

func TestRingQueueWrapAround(t *testing.T) {
	rq := NewRingQueue[string](2)
	rq.Enqueue("a")
	rq.Enqueue("b")
	rq.Dequeue()
	if err := rq.Enqueue("c"); err != nil {
		t.Fatalf("Enqueue after wrap: %v", err)
	}
	v, _ := rq.Dequeue()
	if v != "b" {
		t.Errorf("expected b, got %s", v)
	}
	v, _ = rq.Dequeue()
	if v != "c" {
		t.Errorf("expected c, got %s", v)
	}
}

func TestRingQueueDrain(t *testing.T) {
	rq := NewRingQueue[int](4)
	for i := 0; i < 4; i++ {
		rq.Enqueue(i)
	}
	var got []int
	rq.Drain(func(v int) { got = append(got, v) })
	if len(got) != 4 {
		t.Fatalf("expected 4 drained values, got %d", len(got))
	}
	if !rq.IsEmpty() {
		t.Error("queue should be empty after Drain")
	}
	for i, v := range got {
		if v != i {
			t.Errorf("drained[%d] = %d, want %d", i, v, i)
		}
	}
}
