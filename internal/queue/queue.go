// Package queue is a small at-least-once job queue on top of Redis streams
// and consumer groups. Entries that stay unacknowledged past the visibility
// timeout are claimed again; after MaxRetries deliveries they are moved to
// "<name>:dlq" when EnableDLQ is set.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/nimasrn/freight-bids/pkg/redis"
)

var (
	ErrAlreadyAcked  = errors.New("message already acknowledged")
	ErrAlreadyNacked = errors.New("message already rejected")
)

const metaPrefix = "meta_"

type Message struct {
	ID        string
	Data      []byte
	Metadata  map[string]string
	Timestamp time.Time
	// Attempts counts earlier deliveries of this entry.
	Attempts int
	acked    bool
	nacked   bool
	queue    *Queue
}

func (m *Message) Ack(ctx context.Context) error {
	if m.acked {
		return ErrAlreadyAcked
	}
	if m.nacked {
		return ErrAlreadyNacked
	}
	m.acked = true
	return m.queue.ack(ctx, m.ID)
}

// Nack leaves the entry pending so it is claimed again after the visibility
// timeout.
func (m *Message) Nack() error {
	if m.acked {
		return ErrAlreadyAcked
	}
	if m.nacked {
		return ErrAlreadyNacked
	}
	m.nacked = true
	return nil
}

// MessageHandler processes one message. A nil return acks it; an error
// leaves it pending for another attempt.
type MessageHandler func(ctx context.Context, msg *Message) error

type QueueConfig struct {
	Name              string
	ConsumerGroup     string
	ConsumerName      string
	MaxRetries        int
	VisibilityTimeout time.Duration
	PollInterval      time.Duration
	BatchSize         int64
	MaxLen            int64
	EnableDLQ         bool
}

type Queue struct {
	adapter redis.RedisAdapter
	config  QueueConfig
	handler MessageHandler
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

type QueueStats struct {
	TotalMessages   int64
	PendingMessages int64
	ConsumerCount   int64
}

func NewQueue(adapter redis.RedisAdapter, config QueueConfig) (*Queue, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("queue name is required")
	}
	if config.ConsumerGroup == "" {
		config.ConsumerGroup = "default-group"
	}
	if config.ConsumerName == "" {
		config.ConsumerName = fmt.Sprintf("consumer-%d", time.Now().UnixNano())
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.VisibilityTimeout == 0 {
		config.VisibilityTimeout = 30 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = time.Second
	}
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		adapter: adapter,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}

	err := adapter.XGroupCreateMkStream(ctx, config.Name, config.ConsumerGroup, "0")
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		cancel()
		return nil, fmt.Errorf("create consumer group %s: %w", config.ConsumerGroup, err)
	}

	return q, nil
}

func (q *Queue) Name() string {
	return q.config.Name
}

func (q *Queue) Publish(ctx context.Context, data []byte, metadata map[string]string) (string, error) {
	values := map[string]interface{}{
		"data":      string(data),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range metadata {
		values[metaPrefix+k] = v
	}

	id, err := q.adapter.XAdd(ctx, q.config.Name, values)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", q.config.Name, err)
	}

	if q.config.MaxLen > 0 {
		if err := q.adapter.XTrimApprox(ctx, q.config.Name, q.config.MaxLen); err != nil {
			logger.Warn("queue trim failed", "queue", q.config.Name, "error", err)
		}
	}
	return id, nil
}

func (q *Queue) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}
	return q.Publish(ctx, b, metadata)
}

// Consume starts the poll loop in the background. It may be called once.
func (q *Queue) Consume(handler MessageHandler) error {
	if handler == nil {
		return fmt.Errorf("message handler is required")
	}
	if q.handler != nil {
		return fmt.Errorf("queue %s already has a consumer", q.config.Name)
	}
	q.handler = handler

	q.wg.Add(1)
	go q.consumeLoop()
	return nil
}

func (q *Queue) consumeLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.readNew()
			q.claimStuck()
		}
	}
}

func (q *Queue) readNew() {
	entries, err := q.adapter.XReadGroup(q.ctx,
		q.config.ConsumerGroup,
		q.config.ConsumerName,
		q.config.Name,
		">",
		q.config.BatchSize,
		-1,
	)
	if err != nil {
		if !errors.Is(err, redis.NilError) && q.ctx.Err() == nil {
			logger.Error("queue read failed", "queue", q.config.Name, "error", err)
		}
		return
	}

	for _, entry := range entries {
		q.handle(q.toMessage(entry, 0))
	}
}

func (q *Queue) claimStuck() {
	pending, err := q.adapter.XPendingExt(q.ctx, q.config.Name, q.config.ConsumerGroup, "-", "+", 100)
	if err != nil || len(pending) == 0 {
		return
	}

	attempts := make(map[string]int, len(pending))
	var ids []string
	for _, p := range pending {
		if p.Idle >= q.config.VisibilityTimeout {
			ids = append(ids, p.ID)
			attempts[p.ID] = int(p.RetryCount)
		}
	}
	if len(ids) == 0 {
		return
	}

	entries, err := q.adapter.XClaim(q.ctx, q.config.Name, q.config.ConsumerGroup, q.config.ConsumerName, q.config.VisibilityTimeout, ids...)
	if err != nil {
		logger.Error("queue claim failed", "queue", q.config.Name, "error", err)
		return
	}

	for _, entry := range entries {
		q.handle(q.toMessage(entry, attempts[entry.ID]))
	}
}

func (q *Queue) handle(msg *Message) {
	if msg.Attempts >= q.config.MaxRetries {
		logger.Warn("queue message exhausted retries", "queue", q.config.Name, "id", msg.ID, "attempts", msg.Attempts)
		q.deadLetter(msg)
		_ = q.ack(q.ctx, msg.ID)
		return
	}

	ctx, cancel := context.WithTimeout(q.ctx, q.config.VisibilityTimeout)
	defer cancel()

	if err := q.handler(ctx, msg); err != nil {
		logger.Warn("queue handler failed", "queue", q.config.Name, "id", msg.ID, "attempt", msg.Attempts+1, "error", err)
		return
	}
	if msg.acked || msg.nacked {
		return
	}
	if err := msg.Ack(ctx); err != nil {
		logger.Error("queue ack failed", "queue", q.config.Name, "id", msg.ID, "error", err)
	}
}

func (q *Queue) ack(ctx context.Context, id string) error {
	return q.adapter.XAck(ctx, q.config.Name, q.config.ConsumerGroup, id)
}

func (q *Queue) deadLetter(msg *Message) {
	if !q.config.EnableDLQ {
		return
	}

	values := map[string]interface{}{
		"data":           string(msg.Data),
		"original_id":    msg.ID,
		"attempts":       msg.Attempts,
		"failed_at":      time.Now().UTC().Format(time.RFC3339Nano),
		"original_queue": q.config.Name,
	}
	for k, v := range msg.Metadata {
		values[metaPrefix+k] = v
	}

	if _, err := q.adapter.XAdd(q.ctx, q.config.Name+":dlq", values); err != nil {
		logger.Error("queue dead letter failed", "queue", q.config.Name, "id", msg.ID, "error", err)
	}
}

func (q *Queue) toMessage(entry redis.StreamMessage, attempts int) *Message {
	msg := &Message{
		ID:       entry.ID,
		Metadata: make(map[string]string),
		Attempts: attempts,
		queue:    q,
	}

	for k, v := range entry.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch {
		case k == "data":
			msg.Data = []byte(s)
		case k == "timestamp":
			if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
				msg.Timestamp = ts
			} else if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
				msg.Timestamp = time.Unix(unix, 0)
			}
		case strings.HasPrefix(k, metaPrefix):
			msg.Metadata[strings.TrimPrefix(k, metaPrefix)] = s
		}
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return msg
}

// Stop ends the poll loop and waits for an in-flight batch, up to timeout.
func (q *Queue) Stop(timeout time.Duration) error {
	q.once.Do(q.cancel)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for queue %s to stop", q.config.Name)
	}
}

func (q *Queue) GetStats(ctx context.Context) (*QueueStats, error) {
	total, err := q.adapter.XLen(ctx, q.config.Name)
	if err != nil {
		return nil, err
	}

	stats := &QueueStats{TotalMessages: total}
	pending, err := q.adapter.XPending(ctx, q.config.Name, q.config.ConsumerGroup)
	if err == nil && pending != nil {
		stats.PendingMessages = pending.Count
		stats.ConsumerCount = int64(len(pending.Consumers))
	}
	return stats, nil
}
