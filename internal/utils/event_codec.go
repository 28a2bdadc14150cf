package utils

import (
	"encoding/binary"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventTypeStep 步骤事件，作为消息前 4 字节
const EventTypeStep uint32 = 1

// EncodeEvent 将 protobuf 消息编码为带事件类型前缀的二进制数据：
// - 前 4 字节为事件类型（uint32，小端序）
// - 后续为 protobuf 序列化数据（使用 MarshalAppend）
func EncodeEvent(eventType uint32, msg proto.Message) ([]byte, error) {
	const extraBuffer = 32 // 多预留一些空间，降低 MarshalAppend 触发扩容的概率

	size := proto.Size(msg)
	buf := make([]byte, 4, 4+size+extraBuffer)
	binary.LittleEndian.PutUint32(buf[:4], eventType)

	opts := proto.MarshalOptions{Deterministic: true}
	result, err := opts.MarshalAppend(buf, msg)
	if err != nil {
		return nil, fmt.Errorf("EncodeEvent: marshal %T: %w", msg, err)
	}
	return result, nil
}

// NewStepEvent 构造步骤事件。字段不固定，使用 structpb 承载
func NewStepEvent(runID, step, signature, status, errMsg string, at time.Time) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"run_id":    runID,
		"step":      step,
		"signature": signature,
		"status":    status,
		"at":        at.UnixMilli(),
	}
	if errMsg != "" {
		fields["error"] = errMsg
	}
	return structpb.NewStruct(fields)
}
