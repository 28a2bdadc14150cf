package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"pam-client-sol/internal/ledger"
	"pam-client-sol/internal/pkg/types"
	"pam-client-sol/internal/utils"
	"pam-client-sol/pkg/logger"
)

// EventPublisher 把运行步骤投递到 Kafka。投递失败只记日志
type EventPublisher struct {
	producer   *kafka.Producer
	topic      string
	partitions int
	timeout    time.Duration
}

func NewEventPublisher(producer *kafka.Producer, topic string, partitions int, timeout time.Duration) *EventPublisher {
	if partitions <= 0 {
		partitions = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &EventPublisher{
		producer:   producer,
		topic:      topic,
		partitions: partitions,
		timeout:    timeout,
	}
}

// BuildStepJob 将步骤记录编码为事件。分区按签名选择，无签名的落在 0 号分区
func BuildStepJob(topic string, partitions int, rec *ledger.StepRecord) (*EventJob, error) {
	msg, err := utils.NewStepEvent(rec.RunID, rec.Name, rec.Signature, rec.Status.String(), rec.Error, rec.At)
	if err != nil {
		return nil, fmt.Errorf("build step event: %w", err)
	}
	value, err := utils.EncodeEvent(utils.EventTypeStep, msg)
	if err != nil {
		return nil, err
	}

	var partition int32
	if rec.Signature != "" {
		if sig, err := types.SignatureFromBase58(rec.Signature); err == nil {
			partition = utils.PartitionOf(sig[:], partitions)
		}
	}
	return &EventJob{
		Topic:     topic,
		Partition: partition,
		Key:       []byte(rec.RunID),
		Value:     value,
	}, nil
}

// PublishSteps 投递一组步骤，返回成功条数
func (p *EventPublisher) PublishSteps(ctx context.Context, recs ...*ledger.StepRecord) int {
	jobs := make([]*EventJob, 0, len(recs))
	for _, rec := range recs {
		job, err := BuildStepJob(p.topic, p.partitions, rec)
		if err != nil {
			logger.Warnf("[Publisher] 编码步骤失败: run=%s step=%s err=%v", rec.RunID, rec.Name, err)
			continue
		}
		jobs = append(jobs, job)
	}

	ok, failed := SendEventJobs(ctx, p.producer, jobs, p.timeout)
	for _, f := range failed {
		logger.Warnf("[Publisher] 投递失败: topic=%s partition=%d err=%v", f.Job.Topic, f.Job.Partition, f.Err)
	}
	return len(ok)
}

// Close 等待未完成的投递后关闭 producer
func (p *EventPublisher) Close() {
	if p.producer == nil {
		return
	}
	if remaining := p.producer.Flush(int(p.timeout.Milliseconds())); remaining > 0 {
		logger.Warnf("[Publisher] 关闭时仍有 %d 条事件未投递", remaining)
	}
	p.producer.Close()
}
