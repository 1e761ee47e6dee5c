package parallel

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/dd0wney/cluso-triest/pkg/logging"
)

// WorkerPool runs submitted tasks on a fixed set of goroutines. Experiments
// use it to run independent estimator trials side by side; a single
// estimator is never shared between tasks.
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
	logger    logging.Logger
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// NewWorkerPool creates a new worker pool with specified number of workers.
// Non-positive counts default to one worker.
func NewWorkerPool(workers int, logger logging.Logger) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2), // Buffer for 2x workers
		logger:    logger.With(logging.Component("worker_pool")),
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// start initializes the worker goroutines
func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// worker processes tasks from the queue
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		// Recover from panics in tasks to prevent worker crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the worker
					wp.logger.Error("task panic recovered", logging.Any("panic", fmt.Sprint(r)))
				}
			}()
			task()
		}()
	}
}

// Submit adds a task to the worker pool.
// Returns false if the pool is closed, true if task was submitted.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	// Check if pool is closed while holding read lock
	if wp.closed {
		return false
	}

	// Safe to send because we hold the lock and pool is not closed
	wp.taskQueue <- task
	return true
}

// Close stops accepting tasks and waits for queued ones to finish.
// It is safe to call more than once.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		// Acquire write lock before closing
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Run executes fn(ctx, i) for i in [0, n) on a new pool of the given size and
// waits for all of them. It returns the first error by index order. Once ctx
// is done no further tasks start; their slot reports ctx.Err().
func Run(ctx context.Context, workers, n int, logger logging.Logger, fn func(ctx context.Context, i int) error) error {
	pool, err := NewWorkerPool(workers, logger)
	if err != nil {
		return err
	}

	// Each task writes only its own slot; Close orders the writes before the scan
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		submitted := pool.Submit(func() {
			// Skip tasks queued after cancellation
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			// Report a panic as this task's error instead of the worker's log line
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("task %d panicked: %v", i, r)
				}
			}()
			errs[i] = fn(ctx, i)
		})
		if !submitted {
			errs[i] = fmt.Errorf("task %d not submitted: pool closed", i)
		}
	}
	pool.Close()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
