package queue

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestJobsReportTheirResult(t *testing.T) {
	rqm := NewRequestQueueManager(4, 2)
	defer rqm.Shutdown()

	want := errors.New("boom")
	errc := make(chan error, 1)
	rqm.EnqueueJob(Job{Fn: func() error { return want }, Errc: errc})

	if err := <-errc; !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestPanickingJobBecomesError(t *testing.T) {
	rqm := NewRequestQueueManager(1, 1)
	defer rqm.Shutdown()

	errc := make(chan error, 1)
	rqm.EnqueueJob(Job{Fn: func() error { panic("bad handler") }, Errc: errc})

	if err := <-errc; err == nil {
		t.Fatal("expected an error from the panicking job")
	}

	// the worker survives
	errc2 := make(chan error, 1)
	rqm.EnqueueJob(Job{Fn: func() error { return nil }, Errc: errc2})
	if err := <-errc2; err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestShutdownDrainsQueue(t *testing.T) {
	rqm := NewRequestQueueManager(16, 1)

	var ran int32
	for i := 0; i < 10; i++ {
		rqm.EnqueueJob(Job{Fn: func() error {
			atomic.AddInt32(&ran, 1)
			return nil
		}})
	}
	rqm.Shutdown()
	rqm.Shutdown()

	if got := atomic.LoadInt32(&ran); got != 10 {
		t.Fatalf("expected 10 jobs to run, got %d", got)
	}
	if rqm.Depth() != 0 {
		t.Fatalf("expected empty queue, got %d", rqm.Depth())
	}
}
