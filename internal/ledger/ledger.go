package ledger

import (
	"context"
	"errors"
	"time"

	"pam-client-sol/pkg/logger"
)

var ErrNoHistoryStore = errors.New("run history needs redis")

// Ledger 统一封装内存缓冲与可选的 Redis，记录每次运行的链上步骤
type Ledger struct {
	redis  *RedisLedgerStore // 可为 nil
	buffer *stepBuffer
	now    func() time.Time
}

func NewLedger(redis *RedisLedgerStore) *Ledger {
	return &Ledger{
		redis:  redis,
		buffer: newStepBuffer(),
		now:    time.Now,
	}
}

// Record 写入一条步骤状态。Redis 写入失败只记日志，不影响链上流程
func (l *Ledger) Record(ctx context.Context, runID, name, signature string, status StepStatus, stepErr error) *StepRecord {
	rec := &StepRecord{
		RunID:     runID,
		Name:      name,
		Signature: signature,
		Status:    status,
		At:        l.now(),
	}
	if stepErr != nil {
		rec.Error = stepErr.Error()
	}
	l.buffer.Add(rec)

	if l.redis != nil {
		if err := l.redis.SaveStep(ctx, rec); err != nil {
			logger.Warnf("[Ledger] 写入 Redis 失败: run=%s step=%s err=%v", runID, name, err)
		}
	}
	return rec
}

// Steps 当前进程内该运行的步骤
func (l *Ledger) Steps(runID string) []*StepRecord {
	return l.buffer.Get(runID)
}

// History 读取某次运行的步骤。历史运行只存在于 Redis，未配置 Redis 时返回 ErrNoHistoryStore
func (l *Ledger) History(ctx context.Context, runID string) ([]*StepRecord, error) {
	if l.redis == nil {
		return nil, ErrNoHistoryStore
	}
	return l.redis.LoadRun(ctx, runID)
}
