package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"hn-discuss/internal/observe"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps a capped stream of upstream failures for later inspection.
// Search results themselves are never stored.
type RedisStore struct {
	rdb    *redis.Client
	stream string
	maxLen int64
}

func NewRedisStore(rdb *redis.Client, stream string, maxLen int64) *RedisStore {
	return &RedisStore{rdb: rdb, stream: stream, maxLen: maxLen}
}

// FailureRecord is a failure as read back from the stream.
type FailureRecord struct {
	ID       string    `json:"-"`
	Op       string    `json:"op"`
	Endpoint string    `json:"endpoint"`
	Query    string    `json:"query,omitempty"`
	StoryID  int64     `json:"story_id,omitempty"`
	Page     int       `json:"page"`
	Status   int       `json:"status,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// AppendFailure adds a failure to the stream, trimming it to roughly maxLen entries.
func (s *RedisStore) AppendFailure(ctx context.Context, f observe.Failure) error {
	rec := FailureRecord{
		Op:       f.Op,
		Endpoint: f.Endpoint,
		Query:    f.Query,
		StoryID:  f.StoryID,
		Page:     f.Page,
		Status:   f.Status,
		At:       f.At,
	}
	if f.Err != nil {
		rec.Error = f.Err.Error()
	}
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{"data": string(b)},
	}).Err()
}

// RecentFailures returns up to n failures, newest first.
func (s *RedisStore) RecentFailures(ctx context.Context, n int64) ([]FailureRecord, error) {
	msgs, err := s.rdb.XRevRangeN(ctx, s.stream, "+", "-", n).Result()
	if err != nil {
		return nil, err
	}
	out := make([]FailureRecord, 0, len(msgs))
	for _, m := range msgs {
		raw, _ := m.Values["data"].(string)
		var rec FailureRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			slog.Warn("storage: skipping malformed failure entry", "id", m.ID, "error", err)
			continue
		}
		rec.ID = m.ID
		out = append(out, rec)
	}
	return out, nil
}

// FailureReporter queues failures and writes them to the stream from a single goroutine,
// so Report never waits on Redis. When the queue is full the failure is only logged.
type FailureReporter struct {
	store   *RedisStore
	timeout time.Duration
	queue   chan observe.Failure
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewFailureReporter starts the writer. Close it to flush what is queued.
func NewFailureReporter(store *RedisStore, buffer int) *FailureReporter {
	if buffer <= 0 {
		buffer = 64
	}
	r := &FailureReporter{
		store:   store,
		timeout: 500 * time.Millisecond,
		queue:   make(chan observe.Failure, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *FailureReporter) Report(_ context.Context, f observe.Failure) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- f:
	default:
		slog.Warn("storage: failure queue full, dropping", "op", f.Op)
	}
}

// Close stops accepting failures and waits until the queued ones are written.
func (r *FailureReporter) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *FailureReporter) run() {
	defer close(r.done)
	for f := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.store.AppendFailure(ctx, f); err != nil {
			slog.Error("storage: append failure error", "op", f.Op, "error", err)
		}
		cancel()
	}
}
