package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pam-client-sol/internal/pkg/types"
	"pam-client-sol/pkg/logger"
)

var ErrTransactionFailed = errors.New("transaction failed on chain")

// WaitForConfirmation 轮询签名状态直到达到 target 级别；超时由 ctx 控制
func WaitForConfirmation(ctx context.Context, c Client, sig types.Signature, target Commitment, poll time.Duration) (*Status, error) {
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	start := time.Now()
	for {
		status, err := c.SignatureStatus(ctx, sig)
		switch {
		case err != nil:
			// 查询失败不代表交易失败，继续轮询直到超时
			logger.Warnf("[Confirm] 查询签名状态失败: sig=%s err=%v", sig, err)
		case status == nil:
			logger.Debugf("[Confirm] 签名尚未被节点看到: sig=%s", sig)
		case status.Err != nil:
			return status, fmt.Errorf("%w: sig=%s err=%v", ErrTransactionFailed, sig, status.Err)
		case status.Commitment.Reached(target):
			logger.Infof("[Confirm] sig=%s commitment=%s slot=%d 耗时=%v", sig, status.Commitment, status.Slot, time.Since(start))
			return status, nil
		default:
			logger.Debugf("[Confirm] sig=%s commitment=%s, 等待 %s", sig, status.Commitment, target)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for %s of %s: %w", target, sig, ctx.Err())
		case <-ticker.C:
		}
	}
}
