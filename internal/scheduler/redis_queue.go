package scheduler

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	delayedTasksKey    = "scheduler:delayed_tasks"
	processingTasksKey = "scheduler:processing_tasks"
)

// redisQueue stores pending tasks in a sorted set scored by fire-at
// time, so multiple instances can share one schedule. Claiming moves
// the member into a processing set scored by lease expiry; only the
// instance that wins the ZREM owns the task. Ack removes it from the
// processing set; unacked members are reclaimed once their lease runs
// out.
type redisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a Redis-backed queue.
func NewRedisQueue(client *redis.Client) Queue {
	return &redisQueue{client: client}
}

func (q *redisQueue) Enqueue(ctx context.Context, task Task) error {
	member, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.ZAdd(ctx, delayedTasksKey, redis.Z{
		Score:  float64(task.FireAt.Unix()),
		Member: member,
	}).Err()
}

func (q *redisQueue) Claim(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	// Expired-lease members first, then newly due ones.
	claimed, err := q.claimFrom(ctx, processingTasksKey, now, limit)
	if err != nil {
		return claimed, err
	}
	if len(claimed) < limit {
		due, err := q.claimFrom(ctx, delayedTasksKey, now, limit-len(claimed))
		claimed = append(claimed, due...)
		if err != nil {
			return claimed, err
		}
	}
	return claimed, nil
}

// claimFrom leases up to limit due members of key: a member is won by
// the instance whose ZREM removes it, then parked in the processing
// set until its lease expires.
func (q *redisQueue) claimFrom(ctx context.Context, key string, now time.Time, limit int) ([]Task, error) {
	members, err := q.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	var claimed []Task
	for _, member := range members {
		removed, err := q.client.ZRem(ctx, key, member).Result()
		if err != nil {
			return claimed, err
		}
		if removed == 0 {
			// Another instance claimed it first.
			continue
		}
		if err := q.client.ZAdd(ctx, processingTasksKey, redis.Z{
			Score:  float64(now.Add(claimLease).Unix()),
			Member: member,
		}).Err(); err != nil {
			return claimed, err
		}
		var task Task
		if err := json.Unmarshal([]byte(member), &task); err != nil {
			q.client.ZRem(ctx, processingTasksKey, member)
			continue
		}
		claimed = append(claimed, task)
	}
	return claimed, nil
}

func (q *redisQueue) Ack(ctx context.Context, task Task) error {
	// Marshaling is deterministic for the same task value, so this
	// reproduces the member written at claim time.
	member, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.ZRem(ctx, processingTasksKey, member).Err()
}
