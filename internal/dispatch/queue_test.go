// internal/dispatch/queue_test.go
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/freely-dev/freely/internal/agent"
	"github.com/freely-dev/freely/internal/types"
)

func queuedJob(sessionID types.SessionID, prompt string) *Job {
	return NewJob(types.ToolClaudeCode, agent.Request{SessionID: sessionID, Prompt: prompt})
}

func TestQueueConcurrency(t *testing.T) {
	queue := NewQueue(2)
	queue.Start(context.Background())
	defer queue.Stop()

	var running int32
	var maxSeen int32

	queue.SetProcessor(func(job *Job) error {
		current := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&maxSeen)
			if current <= old || atomic.CompareAndSwapInt32(&maxSeen, old, current) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})

	for i := 0; i < 5; i++ {
		job := queuedJob(types.SessionID(fmt.Sprintf("session-%d", i)), "go")
		if err := queue.Enqueue(job); err != nil {
			t.Fatal(err)
		}
	}

	time.Sleep(500 * time.Millisecond)

	if m := atomic.LoadInt32(&maxSeen); m > 2 {
		t.Errorf("expected max 2 concurrent, saw %d", m)
	}
}

func TestQueueProcessorCalled(t *testing.T) {
	queue := NewQueue(1)
	queue.Start(context.Background())
	defer queue.Stop()

	var processed int32
	queue.SetProcessor(func(job *Job) error {
		atomic.AddInt32(&processed, 1)
		return nil
	})

	if err := queue.Enqueue(queuedJob("test-session", "hi")); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&processed) != 1 {
		t.Errorf("expected 1 processed job, got %d", processed)
	}
}

func TestQueueSameSessionOrdering(t *testing.T) {
	queue := NewQueue(1)
	queue.Start(context.Background())
	defer queue.Stop()

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	queue.SetProcessor(func(job *Job) error {
		mu.Lock()
		order = append(order, job.Request.Prompt)
		n := len(order)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
		return nil
	})

	for i := 0; i < 3; i++ {
		job := queuedJob("same-session", fmt.Sprintf("prompt-%d", i))
		if err := queue.Enqueue(job); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for jobs to process")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if want := fmt.Sprintf("prompt-%d", i); v != want {
			t.Errorf("expected order[%d] = %s, got %s", i, want, v)
		}
	}
}

func TestQueueNoProcessor(t *testing.T) {
	queue := NewQueue(1)
	queue.Start(context.Background())
	defer queue.Stop()

	// Enqueue without setting a processor -- should not panic
	if err := queue.Enqueue(queuedJob("no-proc", "hi")); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
}
