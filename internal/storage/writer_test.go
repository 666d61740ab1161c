package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWriter_Do(t *testing.T) {
	writer := NewWriter()
	defer writer.Close()

	ran := false
	err := writer.Do(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("Do() unexpected error: %v", err)
	}
	if !ran {
		t.Error("Do() should run the submitted function")
	}
}

func TestWriter_DoReturnsFnError(t *testing.T) {
	writer := NewWriter()
	defer writer.Close()

	want := errors.New("write failed")
	err := writer.Do(context.Background(), func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("Do() error = %v, want %v", err, want)
	}
}

func TestWriter_DoAfterClose(t *testing.T) {
	writer := NewWriter()
	writer.Close()

	err := writer.Do(context.Background(), func(ctx context.Context) error {
		t.Error("function should not run after Close")
		return nil
	})
	if !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Do() error = %v, want ErrWriterClosed", err)
	}
}

func TestWriter_DoCancelledWhileQueued(t *testing.T) {
	writer := NewWriter()
	defer writer.Close()

	// Occupy the worker so the next submission has to queue.
	release := make(chan struct{})
	busy := make(chan struct{})
	go func() {
		_ = writer.Do(context.Background(), func(ctx context.Context) error {
			close(busy)
			<-release
			return nil
		})
	}()
	<-busy

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- writer.Do(ctx, func(ctx context.Context) error {
			return nil
		})
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Do() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do() did not return after context cancellation")
	}

	close(release)
}

func TestWriter_SerializesWrites(t *testing.T) {
	writer := NewWriter()
	defer writer.Close()

	// Without serialization the unsynchronized counter would race.
	counter := 0
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			_ = writer.Do(context.Background(), func(ctx context.Context) error {
				counter++
				return nil
			})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if counter != 10 {
		t.Errorf("counter = %d, want 10", counter)
	}
}
