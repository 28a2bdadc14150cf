package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLedgerStore 将运行步骤写入 Redis，便于多次运行之间查询历史签名
type RedisLedgerStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// Redis key 前缀
const keyPrefix = "pam:run"

const defaultTTL = 72 * time.Hour

func NewRedisLedgerStore(rdb *redis.Client, ttl time.Duration) *RedisLedgerStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisLedgerStore{rdb: rdb, ttl: ttl}
}

// stepKey 单个步骤的记录
func stepKey(runID, name string) string {
	return fmt.Sprintf("%s:%s:step:%s", keyPrefix, runID, name)
}

// stepsKey 运行内步骤名列表，保持写入顺序
func stepsKey(runID string) string {
	return fmt.Sprintf("%s:%s:steps", keyPrefix, runID)
}

// SaveStep 写入步骤记录；首次出现的步骤名追加到列表
func (r *RedisLedgerStore) SaveStep(ctx context.Context, record *StepRecord) error {
	val, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal step: %w", err)
	}

	key := stepKey(record.RunID, record.Name)
	existed, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis exists error: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, key, val, r.ttl)
	if existed == 0 {
		pipe.RPush(ctx, stepsKey(record.RunID), record.Name)
	}
	pipe.Expire(ctx, stepsKey(record.RunID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save step error: %w", err)
	}
	return nil
}

// LoadRun 按写入顺序读取一次运行的全部步骤
func (r *RedisLedgerStore) LoadRun(ctx context.Context, runID string) ([]*StepRecord, error) {
	names, err := r.rdb.LRange(ctx, stepsKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange error: %w", err)
	}
	records := make([]*StepRecord, 0, len(names))
	for _, name := range names {
		rec, err := r.getStep(ctx, runID, name)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (r *RedisLedgerStore) getStep(ctx context.Context, runID, name string) (*StepRecord, error) {
	val, err := r.rdb.Get(ctx, stepKey(runID, name)).Bytes()
	switch {
	case err == redis.Nil:
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	var rec StepRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal step %s: %w", name, err)
	}
	return &rec, nil
}
