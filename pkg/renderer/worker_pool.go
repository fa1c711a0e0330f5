package renderer

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile   *Tile
	Round  int
	TaskID int
}

// TileResult contains the result from rendering a tile. The tile's block holds
// the new samples until the consumer merges it.
type TileResult struct {
	TaskID  int
	Tile    *Tile
	Samples int
	Error   error
}

// TileFunc renders one task; it runs on a worker goroutine
type TileFunc func(ctx context.Context, task TileTask) TileResult

// WorkerPool manages parallel tile rendering. Workers only render; all results
// go back to the single goroutine that calls GetResult.
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	numWorkers  int
	render      TileFunc
	group       *errgroup.Group
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// queueSize bounds the tasks that can be submitted without blocking.
func NewWorkerPool(numWorkers, queueSize int, render TileFunc) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		taskQueue:   make(chan TileTask, queueSize),
		resultQueue: make(chan TileResult, queueSize),
		numWorkers:  numWorkers,
		render:      render,
	}
}

// Start begins all workers
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < wp.numWorkers; i++ {
		wp.group.Go(func() error {
			for task := range wp.taskQueue {
				wp.resultQueue <- wp.run(ctx, task)
			}
			return nil
		})
	}
}

// run renders one task, turning a panic into a task error
func (wp *WorkerPool) run(ctx context.Context, task TileTask) (result TileResult) {
	defer func() {
		if r := recover(); r != nil {
			result = TileResult{TaskID: task.TaskID, Tile: task.Tile, Error: fmt.Errorf("while rendering tile %d: %v", task.Tile.ID, r)}
		}
	}()
	return wp.render(ctx, task)
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() error {
	close(wp.taskQueue)
	var err error
	if wp.group != nil {
		err = wp.group.Wait()
	}
	close(wp.resultQueue)
	return err
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}
