package queue

import (
	"fmt"
	"log"
	"sync"
)

// Job is one unit of request work. Errc, when set, receives Fn's result.
type Job struct {
	Fn   func() error
	Errc chan error
}

type RequestQueueManager struct {
	JobQueue   chan Job
	MaxWorkers int
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

func NewRequestQueueManager(queueSize int, maxWorkers int) *RequestQueueManager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	manager := &RequestQueueManager{
		JobQueue:   make(chan Job, queueSize),
		MaxWorkers: maxWorkers,
	}
	manager.startWorkers()
	return manager
}

func (rqm *RequestQueueManager) startWorkers() {
	for i := 0; i < rqm.MaxWorkers; i++ {
		rqm.wg.Add(1)
		go func(workerID int) {
			defer rqm.wg.Done()
			log.Printf("[QUEUE] worker %d started", workerID)
			for job := range rqm.JobQueue {
				err := run(job.Fn)
				if job.Errc != nil {
					job.Errc <- err
				}
			}
			log.Printf("[QUEUE] worker %d stopped", workerID)
		}(i)
	}
}

// run turns a panicking job into an error so its caller is never left waiting.
func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("queue: job panicked: %v", r)
		}
	}()
	return fn()
}

func (rqm *RequestQueueManager) EnqueueJob(job Job) {
	rqm.JobQueue <- job
}

// Depth reports jobs waiting for a worker.
func (rqm *RequestQueueManager) Depth() int {
	return len(rqm.JobQueue)
}

// Shutdown stops accepting jobs and waits for the workers to drain the queue.
func (rqm *RequestQueueManager) Shutdown() {
	rqm.closeOnce.Do(func() {
		close(rqm.JobQueue)
	})
	rqm.wg.Wait()
}
