package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a Redis list used as a work queue: LPUSH to enqueue,
// BRPOP to consume. Multiple workers can consume the same list; each
// job is delivered to one of them.
type RedisQueue struct {
	client *redis.Client
	name   string
}

func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	return &RedisQueue{client: client, name: name}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Job, error) {
	res, err := q.client.BRPop(ctx, 0, q.name).Result()
	if err != nil {
		return Job{}, fmt.Errorf("dequeue job: %w", err)
	}
	// BRPop returns [key, value].
	if len(res) != 2 {
		return Job{}, fmt.Errorf("unexpected brpop reply of length %d", len(res))
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return Job{}, fmt.Errorf("unmarshal job: %w", err)
	}
	return job, nil
}
