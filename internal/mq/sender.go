package mq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// EventJob 表示一条待投递的运行事件
type EventJob struct {
	Topic     string
	Partition int32
	Key       []byte // 运行 ID，同一运行的事件便于下游聚合
	Value     []byte
}

// EventSendResult 每条事件的投递结果
type EventSendResult struct {
	Job *EventJob
	Err error
}

// SendEventJobs 并发投递事件并等待 ack，ctx 控制整体取消
func SendEventJobs(
	ctx context.Context,
	producer *kafka.Producer,
	jobs []*EventJob,
	perMessageTimeout time.Duration,
) (ok []*EventJob, failed []EventSendResult) {
	if len(jobs) == 0 {
		return nil, nil
	}

	var wg sync.WaitGroup
	resultCh := make(chan EventSendResult, len(jobs))

	for _, job := range jobs {
		wg.Add(1)
		go func(job *EventJob) {
			defer wg.Done()
			resultCh <- EventSendResult{Job: job, Err: deliverOne(ctx, producer, job, perMessageTimeout)}
		}(job)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		if res.Err != nil {
			failed = append(failed, res)
		} else {
			ok = append(ok, res.Job)
		}
	}
	return ok, failed
}

func deliverOne(ctx context.Context, producer *kafka.Producer, job *EventJob, timeout time.Duration) error {
	deliveryChan := make(chan kafka.Event, 1)
	err := producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &job.Topic,
			Partition: job.Partition,
		},
		Key:   job.Key,
		Value: job.Value,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce error: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e, ok := <-deliveryChan:
		if !ok {
			return fmt.Errorf("delivery channel closed unexpectedly")
		}
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("invalid message type: %T", e)
		}
		return msg.TopicPartition.Error
	case <-timer.C:
		go safeDrain(deliveryChan)
		return fmt.Errorf("delivery timeout (>%v)", timeout)
	case <-ctx.Done():
		go safeDrain(deliveryChan)
		return fmt.Errorf("ctx cancelled: %w", ctx.Err())
	}
}

// safeDrain 确保 deliveryChan 被读走，避免 Kafka 回调阻塞
func safeDrain(ch <-chan kafka.Event) {
	defer func() {
		_ = recover()
	}()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
	}
}
