package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joseph-ayodele/bloodwork/internal/pipeline"
)

type fakeProcessor struct {
	running atomic.Int32
	peak    atomic.Int32
	delay   time.Duration
}

func (f *fakeProcessor) Process(ctx context.Context, path string) (pipeline.Result, error) {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return pipeline.Result{}, ctx.Err()
	}
	if path == "bad" {
		return pipeline.Result{}, errors.New("bad document")
	}
	return pipeline.Result{Prediction: path}, nil
}

func TestProcessorQueue_BoundsConcurrency(t *testing.T) {
	proc := &fakeProcessor{delay: 20 * time.Millisecond}
	q := NewProcessorQueue(proc, nil, WithWorkers(2), WithQueueSize(1))
	defer q.Shutdown(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := q.Submit(context.Background(), "ok")
			if err != nil || res.Prediction != "ok" {
				t.Errorf("Submit() = %+v, %v", res, err)
			}
		}()
	}
	wg.Wait()

	if peak := proc.peak.Load(); peak > 2 {
		t.Fatalf("ran %d documents at once with 2 workers", peak)
	}
}

func TestProcessorQueue_PropagatesErrors(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, nil, WithWorkers(1))
	defer q.Shutdown(context.Background())

	if _, err := q.Submit(context.Background(), "bad"); err == nil {
		t.Fatal("expected processing error")
	}
}

func TestProcessorQueue_ContextCancel(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{delay: time.Second}, nil, WithWorkers(1))
	defer q.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Submit(ctx, "slow"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestProcessorQueue_SubmitAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	if _, err := q.Submit(context.Background(), "ok"); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}
