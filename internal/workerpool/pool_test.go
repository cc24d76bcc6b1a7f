package workerpool

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSubmitReturnsValue(t *testing.T) {
	p := New(2)
	defer p.Close()

	got, err := Submit(context.Background(), p, func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Submit() = %d, want 42", got)
	}
}

func TestSubmitPropagatesError(t *testing.T) {
	p := New(1)
	defer p.Close()

	wantErr := errors.New("boom")
	_, err := Submit(context.Background(), p, func() (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Submit() error = %v, want %v", err, wantErr)
	}
}

func TestSubmitRespectsContextCancellation(t *testing.T) {
	p := New(1)
	defer p.Close()

	// Occupy the single worker so the next Submit has to wait in queue.
	block := make(chan struct{})
	started := make(chan struct{})
	go Submit(context.Background(), p, func() (int, error) {
		close(started)
		<-block
		return 0, nil
	})
	defer close(block)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Submit(ctx, p, func() (int, error) {
		return 1, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestConcurrentSubmits(t *testing.T) {
	p := New(4)
	defer p.Close()

	n := 20
	results := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			v, err := Submit(context.Background(), p, func() (int, error) {
				return i, nil
			})
			if err != nil {
				t.Errorf("Submit() error = %v", err)
			}
			results <- v
		}()
	}

	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		seen[<-results] = true
	}
	if len(seen) != n {
		t.Errorf("got %d distinct results, want %d", len(seen), n)
	}
}
