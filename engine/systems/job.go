package systems

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/posecreator/engine/core"
)

// JobTask is a unit of work for the job system. Run executes on a worker;
// the callbacks are delivered by Update on the goroutine driving the frame
// loop, so they may touch game state freely.
type JobTask struct {
	Name       string
	Run        func() (interface{}, error)
	OnComplete func(result interface{})
	OnFailure  func(err error)
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	// guards jobQueue against sends after close
	queueMutex sync.RWMutex
	closed     bool

	resultMutex sync.Mutex
	results     []jobResult
	pending     atomic.Int64
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemShutdown = fmt.Errorf("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	jq := make(chan JobTask, channelSize)
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   jq,
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := job.Run()
				if err != nil {
					core.LogError("job '%s' failed: %s", job.Name, err)
				}
				js.resultMutex.Lock()
				js.results = append(js.results, jobResult{task: job, result: result, err: err})
				js.resultMutex.Unlock()
			}
		}()
	}
}

/**
 * @brief Shuts the job system down. Queued jobs run to completion and their
 * callbacks are delivered before this returns.
 */
func (js *JobSystem) Shutdown() error {
	js.queueMutex.Lock()
	if js.closed {
		js.queueMutex.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.queueMutex.Unlock()

	js.wg.Wait()
	js.Update()
	return nil
}

/**
 * @brief Delivers the callbacks of finished jobs. Should happen once an
 * update cycle.
 */
func (js *JobSystem) Update() {
	js.resultMutex.Lock()
	done := js.results
	js.results = nil
	js.resultMutex.Unlock()

	for _, r := range done {
		if r.err != nil {
			if r.task.OnFailure != nil {
				r.task.OnFailure(r.err)
			}
		} else if r.task.OnComplete != nil {
			r.task.OnComplete(r.result)
		}
		js.pending.Add(-1)
	}
}

// Pending returns the number of submitted jobs whose callbacks have not been
// delivered yet.
func (js *JobSystem) Pending() int {
	return int(js.pending.Load())
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	if jt.Run == nil {
		return fmt.Errorf("job '%s' has nothing to run", jt.Name)
	}
	js.queueMutex.RLock()
	defer js.queueMutex.RUnlock()
	if js.closed {
		return ErrJobSystemShutdown
	}
	js.pending.Add(1)
	js.jobQueue <- jt
	return nil
}
