package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := New(0)

	for i, id := range []string{"a", "b", "c"} {
		pos, err := q.Enqueue(id)
		if err != nil {
			t.Fatalf("Enqueue(%q) failed: %v", id, err)
		}
		if pos != i {
			t.Errorf("Enqueue(%q) position = %d, want %d", id, pos, i)
		}
	}

	ctx := context.Background()
	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue failed: %v", err)
		}
		if got != want {
			t.Errorf("Dequeue = %q, want %q", got, want)
		}
	}
}

func TestEnqueueFull(t *testing.T) {
	q := New(2)

	if _, err := q.Enqueue("a"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := q.Enqueue("b"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if _, err := q.Enqueue("c"); !errors.Is(err, ErrFull) {
		t.Errorf("Enqueue on full queue = %v, want ErrFull", err)
	}

	// Draining one slot makes room again.
	if _, err := q.Dequeue(context.Background()); err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if _, err := q.Enqueue("c"); err != nil {
		t.Errorf("Enqueue after drain failed: %v", err)
	}
}

func TestDequeueBlocksUntilEnqueue(t *testing.T) {
	q := New(0)

	done := make(chan string, 1)
	go func() {
		id, err := q.Dequeue(context.Background())
		if err != nil {
			done <- "error: " + err.Error()
			return
		}
		done <- id
	}()

	select {
	case id := <-done:
		t.Fatalf("Dequeue returned %q before anything was enqueued", id)
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := q.Enqueue("job-1"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	select {
	case id := <-done:
		if id != "job-1" {
			t.Errorf("Dequeue = %q, want job-1", id)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake after Enqueue")
	}
}

func TestDequeueCanceled(t *testing.T) {
	q := New(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(ctx)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Dequeue = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after cancel")
	}
}

func TestPosition(t *testing.T) {
	q := New(0)

	q.Enqueue("a")
	q.Enqueue("b")
	q.Enqueue("c")

	if pos := q.Position("a"); pos != 0 {
		t.Errorf("Position(a) = %d, want 0", pos)
	}
	if pos := q.Position("c"); pos != 2 {
		t.Errorf("Position(c) = %d, want 2", pos)
	}
	if pos := q.Position("missing"); pos != -1 {
		t.Errorf("Position(missing) = %d, want -1", pos)
	}

	// Positions shift forward after a dequeue.
	if _, err := q.Dequeue(context.Background()); err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if pos := q.Position("a"); pos != -1 {
		t.Errorf("Position(a) after dequeue = %d, want -1", pos)
	}
	if pos := q.Position("b"); pos != 0 {
		t.Errorf("Position(b) = %d, want 0", pos)
	}
	if pos := q.Position("c"); pos != 1 {
		t.Errorf("Position(c) = %d, want 1", pos)
	}
}

func TestLen(t *testing.T) {
	q := New(0)
	if q.Len() != 0 {
		t.Errorf("Len = %d, want 0", q.Len())
	}
	q.Enqueue("a")
	q.Enqueue("b")
	if q.Len() != 2 {
		t.Errorf("Len = %d, want 2", q.Len())
	}
}
