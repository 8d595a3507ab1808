package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// QueueIndexPending holds index writes that failed after the store committed.
const QueueIndexPending = "index:pending"

// IndexOp is the index write to replay.
type IndexOp string

const (
	IndexUpsert IndexOp = "upsert"
	IndexDelete IndexOp = "delete"
)

// IndexJob is one pending index write for a shop.
type IndexJob struct {
	ShopID    uint    `json:"shop_id"`
	Op        IndexOp `json:"op"`
	Attempts  int     `json:"attempts"`
	LastError string  `json:"last_error,omitempty"`
}

var errNoQueue = errors.New("index sync queue not configured")

// IndexSyncQueue is a FIFO of IndexJobs kept in a Redis list
// (LPUSH to enqueue, RPOP to dequeue).
type IndexSyncQueue struct {
	rdb *redis.Client
}

func NewIndexSyncQueue(rdb *redis.Client) *IndexSyncQueue {
	return &IndexSyncQueue{rdb: rdb}
}

// Enqueue pushes a job for the retry cron.
func (q *IndexSyncQueue) Enqueue(ctx context.Context, job IndexJob) error {
	if q == nil || q.rdb == nil {
		return errNoQueue
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, QueueIndexPending, data).Err()
}

// Pop returns the oldest job, or nil when the queue is empty.
func (q *IndexSyncQueue) Pop(ctx context.Context) (*IndexJob, error) {
	if q == nil || q.rdb == nil {
		return nil, errNoQueue
	}
	raw, err := q.rdb.RPop(ctx, QueueIndexPending).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job IndexJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Len returns the number of pending jobs.
func (q *IndexSyncQueue) Len(ctx context.Context) (int64, error) {
	if q == nil || q.rdb == nil {
		return 0, errNoQueue
	}
	return q.rdb.LLen(ctx, QueueIndexPending).Result()
}
