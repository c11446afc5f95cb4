package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRunStore persists run records in Redis as JSON blobs, for
// deployments where the driver and the HTTP/SSE surface run as
// separate processes sharing state.
type RedisRunStore struct {
	client *redis.Client
	prefix string
}

func NewRedisRunStore(client *redis.Client, prefix string) *RedisRunStore {
	return &RedisRunStore{client: client, prefix: prefix}
}

func (s *RedisRunStore) key(runID string) string { return fmt.Sprintf("%srun:%s", s.prefix, runID) }

type redisRunRecord struct {
	RunID        string    `json:"run_id"`
	OrgID        string    `json:"org_id"`
	UserID       string    `json:"user_id"`
	Status       RunStatus `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	CompletedAt  time.Time `json:"completed_at,omitempty"`
	PlanSnapshot []byte    `json:"plan_snapshot,omitempty"`
}

func (s *RedisRunStore) Create(ctx context.Context, rec RunRecord) error {
	raw, err := json.Marshal(redisRunRecord(rec))
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(rec.RunID), raw, 0).Err()
}

func (s *RedisRunStore) Get(ctx context.Context, runID string) (RunRecord, bool, error) {
	raw, err := s.client.Get(ctx, s.key(runID)).Bytes()
	if err == redis.Nil {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, err
	}
	var rec redisRunRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return RunRecord{}, false, err
	}
	return RunRecord(rec), true, nil
}

func (s *RedisRunStore) Update(ctx context.Context, runID string, update RunUpdate) error {
	rec, ok, err := s.Get(ctx, runID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	rec.Status = update.Status
	if !update.CompletedAt.IsZero() {
		rec.CompletedAt = update.CompletedAt
	}
	if update.PlanSnapshot != nil {
		rec.PlanSnapshot = update.PlanSnapshot
	}
	return s.Create(ctx, rec)
}

var _ RunStore = (*RedisRunStore)(nil)
