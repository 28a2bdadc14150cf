package ledger

import (
	"sync"
)

// stepBuffer 进程内的步骤记录，按运行 ID 分组并保持写入顺序
type stepBuffer struct {
	mu     sync.Mutex
	buffer map[string][]*StepRecord
}

func newStepBuffer() *stepBuffer {
	return &stepBuffer{
		buffer: make(map[string][]*StepRecord),
	}
}

// Add 同名步骤再次写入时覆盖原记录（pending -> confirmed）
func (b *stepBuffer) Add(record *StepRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.buffer[record.RunID]
	for i, r := range list {
		if r.Name == record.Name {
			list[i] = record
			return
		}
	}
	b.buffer[record.RunID] = append(list, record)
}

func (b *stepBuffer) Get(runID string) []*StepRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.buffer[runID]
	out := make([]*StepRecord, len(list))
	copy(out, list)
	return out
}
