package worker

import (
	"context"
	"sync"

	"github.com/nimasrn/freight-bids/pkg/logger"
)

type WorkerHandler = func(workerIndex int, job interface{})

// WorkerManager fans jobs out to a fixed pool of goroutines. Jobs are handed
// over through a buffered channel; Enqueue blocks when the buffer is full.
type WorkerManager struct {
	numberOfWorker int
	jobChannel     chan interface{}
	do             WorkerHandler
	cancel         context.CancelFunc
	waiter         sync.WaitGroup
	mu             sync.Mutex
}

func NewWorkerManager(bufferSize, numberOfWorkers int) *WorkerManager {
	if numberOfWorkers <= 0 {
		numberOfWorkers = 1
	}
	return &WorkerManager{
		numberOfWorker: numberOfWorkers,
		jobChannel:     make(chan interface{}, bufferSize),
	}
}

func (w *WorkerManager) SetWorker(worker WorkerHandler) {
	w.do = worker
}

func (w *WorkerManager) GetUnreadCount() int64 {
	return int64(len(w.jobChannel))
}

// Enqueue hands a job to the pool. It gives up when ctx is done first.
func (w *WorkerManager) Enqueue(ctx context.Context, val interface{}) error {
	select {
	case w.jobChannel <- val:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start launches the workers and returns immediately. Workers stop when ctx
// is cancelled or Exit is called.
func (w *WorkerManager) Start(ctx context.Context) {
	w.mu.Lock()
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.waiter.Add(w.numberOfWorker)
	for i := 0; i < w.numberOfWorker; i++ {
		go func(index int) {
			defer w.waiter.Done()
			for {
				select {
				case job := <-w.jobChannel:
					w.do(index, job)
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}
}

// Exit stops every worker and waits for in-flight jobs to return.
func (w *WorkerManager) Exit() {
	logger.Info("worker manager is shutting down", "workers", w.numberOfWorker)
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()
	w.waiter.Wait()
}
