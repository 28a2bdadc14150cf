package ledger

import "time"

// StepStatus 单个步骤的处理状态（Redis 与内存统一编码）
type StepStatus int

const (
	StepUnknown   StepStatus = 0 // 未记录
	StepPending   StepStatus = 1 // 🕒 已提交，等待确认
	StepConfirmed StepStatus = 2 // ✅ 已达到目标确认级别
	StepFailed    StepStatus = 3 // ❌ 提交或确认失败
)

func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepConfirmed:
		return "confirmed"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepRecord 一次运行中的一个链上步骤
type StepRecord struct {
	RunID     string     `json:"run_id" yaml:"run_id"`
	Name      string     `json:"name" yaml:"name"`           // 例如 "create_data_account"
	Signature string     `json:"signature" yaml:"signature"` // base58，失败时可能为空
	Status    StepStatus `json:"status" yaml:"-"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
	At        time.Time  `json:"at" yaml:"at"`
}
