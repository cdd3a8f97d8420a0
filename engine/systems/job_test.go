package systems

import (
	"errors"
	"testing"
	"time"
)

func TestNewJobSystemValidatesArguments(t *testing.T) {
	if _, err := NewJobSystem(0, 1); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("Expected ErrNoWorkers, got %v", err)
	}
	if _, err := NewJobSystem(1, -1); !errors.Is(err, ErrNegativeChannelSize) {
		t.Errorf("Expected ErrNegativeChannelSize, got %v", err)
	}
}

func TestCallbacksAreDeliveredOnUpdate(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	if err != nil {
		t.Fatalf("failed to create job system: %v", err)
	}

	var completed []int
	var failures []error
	for i := 0; i < 3; i++ {
		n := i
		err := js.Submit(JobTask{
			Name:       "square",
			Run:        func() (interface{}, error) { return n * n, nil },
			OnComplete: func(result interface{}) { completed = append(completed, result.(int)) },
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	_ = js.Submit(JobTask{
		Name:      "broken",
		Run:       func() (interface{}, error) { return nil, errors.New("boom") },
		OnFailure: func(err error) { failures = append(failures, err) },
	})

	deadline := time.Now().Add(5 * time.Second)
	for js.Pending() > 0 && time.Now().Before(deadline) {
		js.Update()
		time.Sleep(time.Millisecond)
	}
	if js.Pending() != 0 {
		t.Fatalf("jobs did not finish, %d pending", js.Pending())
	}

	sum := 0
	for _, v := range completed {
		sum += v
	}
	if len(completed) != 3 || sum != 5 {
		t.Errorf("Expected results 0, 1 and 4, got %v", completed)
	}
	if len(failures) != 1 {
		t.Errorf("Expected one failure, got %v", failures)
	}
	if err := js.Shutdown(); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}

func TestShutdownFlushesQueuedJobs(t *testing.T) {
	js, _ := NewJobSystem(1, 8)
	ran := 0
	for i := 0; i < 5; i++ {
		_ = js.Submit(JobTask{
			Run:        func() (interface{}, error) { return nil, nil },
			OnComplete: func(interface{}) { ran++ },
		})
	}
	if err := js.Shutdown(); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if ran != 5 || js.Pending() != 0 {
		t.Errorf("Expected 5 callbacks after shutdown, got %d (%d pending)", ran, js.Pending())
	}
	if err := js.Submit(JobTask{Run: func() (interface{}, error) { return nil, nil }}); !errors.Is(err, ErrJobSystemShutdown) {
		t.Errorf("Expected ErrJobSystemShutdown, got %v", err)
	}
	if err := js.Shutdown(); err != nil {
		t.Errorf("Expected a second shutdown to be a no-op, got %v", err)
	}
}
