package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nimasrn/freight-bids/internal/config"
	"github.com/nimasrn/freight-bids/internal/queue"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/nimasrn/freight-bids/pkg/prom"
	"github.com/nimasrn/freight-bids/pkg/redis"
	"github.com/nimasrn/freight-bids/pkg/worker"
)

const (
	ProcessingTimeout = 10 * time.Second
	HealthInterval    = 30 * time.Second
	MetricsInterval   = 30 * time.Second
	ShutdownTimeout   = time.Minute

	highLagThreshold = 10_000
)

// Processor handles one kind of queued job.
type Processor interface {
	Process(ctx context.Context, message *queue.Message) error
	GetType() string
}

// ProcessorService runs several consumers on the delivery stream and hands
// each message to a shared worker pool.
type ProcessorService struct {
	adapter   redis.RedisAdapter
	queues    []*queue.Queue
	processor Processor
	metrics   *ServiceMetrics
	worker    *worker.WorkerManager
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewProcessorService(adapter redis.RedisAdapter, processor Processor) *ProcessorService {
	ctx, cancel := context.WithCancel(context.Background())
	workers := config.Get().QueueWorkers
	return &ProcessorService{
		adapter:   adapter,
		processor: processor,
		metrics:   NewServiceMetrics(),
		worker:    worker.NewWorkerManager(workers*4, workers),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *ProcessorService) Start() error {
	cfg := config.Get()
	logger.Info("starting processor service", "type", s.processor.GetType())

	s.worker.SetWorker(s.workerHandler)
	s.worker.Start(s.ctx)

	consumers := cfg.QueueConsumers
	if consumers <= 0 {
		consumers = 1
	}
	for i := 0; i < consumers; i++ {
		q, err := queue.NewQueue(s.adapter, queue.QueueConfig{
			Name:              cfg.QueueName,
			ConsumerGroup:     cfg.QueueConsumerGroup,
			ConsumerName:      fmt.Sprintf("%s-%d", cfg.QueueConsumerName, i),
			MaxRetries:        cfg.QueueMaxRetries,
			VisibilityTimeout: cfg.QueueVisibilityTimeout,
			PollInterval:      cfg.QueuePollInterval,
			BatchSize:         cfg.QueueBatchSize,
			MaxLen:            cfg.QueueMaxLen,
			EnableDLQ:         cfg.QueueEnableDLQ,
		})
		if err != nil {
			return fmt.Errorf("create consumer %d: %w", i, err)
		}
		if err := q.Consume(s.messageHandler); err != nil {
			return fmt.Errorf("start consumer %d: %w", i, err)
		}
		s.queues = append(s.queues, q)
	}

	s.wg.Add(2)
	go s.every(MetricsInterval, s.reportMetrics)
	go s.every(HealthInterval, s.performHealthCheck)

	logger.Info("processor service started", "consumers", len(s.queues), "workers", cfg.QueueWorkers)
	return nil
}

func (s *ProcessorService) every(interval time.Duration, fn func()) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fn()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) reportMetrics() {
	snap := s.metrics.Snapshot()
	logger.Info("processor metrics",
		"processed", snap.Processed,
		"failed", snap.Failed,
		"rate_per_second", snap.RatePerSecond,
		"avg_duration_ms", snap.AvgDuration.Milliseconds(),
		"uptime_seconds", snap.Uptime.Seconds())

	// every consumer reads the same stream
	if len(s.queues) == 0 {
		return
	}
	q := s.queues[0]
	stats, err := q.GetStats(context.Background())
	if err != nil {
		logger.Warn("queue stats unavailable", "queue", q.Name(), "error", err)
		return
	}
	prom.SetDeliveryQueuePending(q.Name(), stats.PendingMessages)
	logger.Info("queue stats", "queue", q.Name(), "total", stats.TotalMessages, "pending", stats.PendingMessages, "consumers", stats.ConsumerCount)
}

func (s *ProcessorService) performHealthCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.adapter.Ping(ctx); err != nil {
		logger.Error("health check failed: redis unreachable", "error", err)
		return
	}
	if len(s.queues) == 0 {
		return
	}
	stats, err := s.queues[0].GetStats(ctx)
	if err != nil {
		logger.Warn("health check: queue stats unavailable", "error", err)
		return
	}
	if stats.PendingMessages > highLagThreshold {
		logger.Warn("health check: delivery queue lagging", "pending", stats.PendingMessages)
	}
}

func (s *ProcessorService) Stop() {
	logger.Info("shutting down processor service")
	s.cancel()

	var wg sync.WaitGroup
	for i, q := range s.queues {
		wg.Add(1)
		go func(i int, q *queue.Queue) {
			defer wg.Done()
			if err := q.Stop(ShutdownTimeout); err != nil {
				logger.Error("stop consumer failed", "consumer", i, "error", err)
			}
		}(i, q)
	}
	wg.Wait()

	s.worker.Exit()
	s.wg.Wait()
	s.reportMetrics()
	logger.Info("processor service stopped")
}

// Metrics exposes the in-process counters.
func (s *ProcessorService) Metrics() MetricsSnapshot {
	return s.metrics.Snapshot()
}

type job struct {
	ctx    context.Context
	msg    *queue.Message
	result chan error
}

// messageHandler runs on a consumer goroutine and blocks until a worker has
// processed the message, so the queue acks or keeps it based on the result.
func (s *ProcessorService) messageHandler(ctx context.Context, msg *queue.Message) error {
	ctx, cancel := context.WithTimeout(ctx, ProcessingTimeout)
	defer cancel()

	j := &job{ctx: ctx, msg: msg, result: make(chan error, 1)}
	if err := s.worker.Enqueue(ctx, j); err != nil {
		return fmt.Errorf("enqueue to worker pool: %w", err)
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return fmt.Errorf("waiting for worker: %w", ctx.Err())
	}
}

func (s *ProcessorService) workerHandler(workerIndex int, v interface{}) {
	j, ok := v.(*job)
	if !ok {
		logger.Error("invalid job type in worker", "worker", workerIndex)
		return
	}
	if j.ctx.Err() != nil {
		return
	}

	start := time.Now()
	err := s.processor.Process(j.ctx, j.msg)
	if err != nil {
		s.metrics.RecordFailure()
		logger.Error("process message failed", "worker", workerIndex, "queue_id", j.msg.ID, "attempt", j.msg.Attempts+1, "error", err)
	} else {
		s.metrics.RecordSuccess(time.Since(start))
	}

	// result is buffered; the handler may already have timed out
	j.result <- err
}
