package cache

import (
	"context"
	"sync"
	"time"
)

// BlockhashCache 缓存最近一次获取的 recent blockhash。
// 同一次运行中连续发送的多笔交易可以复用，过期或发送失败后重新获取。
type BlockhashCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	blockhash string
	fetchedAt time.Time
	now       func() time.Time
}

func NewBlockhashCache(ttl time.Duration) *BlockhashCache {
	return &BlockhashCache{ttl: ttl, now: time.Now}
}

// Get 命中且未过期时直接返回，否则调用 fetch 并写入缓存
func (bc *BlockhashCache) Get(ctx context.Context, fetch func(ctx context.Context) (string, error)) (string, error) {
	if h, ok := bc.peek(); ok {
		return h, nil
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	// 双重检查，避免并发下重复请求
	if bc.blockhash != "" && bc.now().Sub(bc.fetchedAt) < bc.ttl {
		return bc.blockhash, nil
	}

	h, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	bc.blockhash = h
	bc.fetchedAt = bc.now()
	return h, nil
}

func (bc *BlockhashCache) peek() (string, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	if bc.blockhash == "" || bc.ttl <= 0 {
		return "", false
	}
	if bc.now().Sub(bc.fetchedAt) >= bc.ttl {
		return "", false
	}
	return bc.blockhash, true
}

// Invalidate 发送失败后调用，下一笔交易重新获取
func (bc *BlockhashCache) Invalidate() {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.blockhash = ""
	bc.fetchedAt = time.Time{}
}
