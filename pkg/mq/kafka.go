// Package mq 提供 Kafka 消费者封装：显式拉取与提交偏移量
package mq

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/pricebook/pkg/config"
	"github.com/wyfcoding/pricebook/pkg/logger"
)

// Message Kafka 消息结构
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       string
	Value     []byte
	Time      time.Time

	raw kafka.Message
}

// Reader 消息读取接口，便于替换为测试实现
type Reader interface {
	// FetchMessage 拉取下一条消息，不自动提交
	FetchMessage(ctx context.Context) (*Message, error)
	// CommitMessages 提交消息偏移量
	CommitMessages(ctx context.Context, messages ...*Message) error
	// Close 关闭读取器
	Close() error
}

// KafkaConsumer Kafka 消费者
type KafkaConsumer struct {
	reader *kafka.Reader
}

var _ Reader = (*KafkaConsumer)(nil)

// ReaderConfig 把配置转换为 kafka-go 读取器参数
func ReaderConfig(cfg config.KafkaConfig) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		SessionTimeout: time.Duration(cfg.SessionTimeout) * time.Second,
		StartOffset:    kafka.LastOffset,
		MaxBytes:       10e6, // 10MB
	}
}

// NewConsumer 创建 Kafka 消费者
func NewConsumer(cfg config.KafkaConfig) *KafkaConsumer {
	reader := kafka.NewReader(ReaderConfig(cfg))

	logger.Info(context.Background(), "Kafka consumer created successfully",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"group_id", cfg.GroupID,
	)
	return &KafkaConsumer{reader: reader}
}

// FetchMessage 拉取下一条消息
func (kc *KafkaConsumer) FetchMessage(ctx context.Context) (*Message, error) {
	msg, err := kc.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	return &Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       string(msg.Key),
		Value:     msg.Value,
		Time:      msg.Time,
		raw:       msg,
	}, nil
}

// CommitMessages 提交消息偏移量
func (kc *KafkaConsumer) CommitMessages(ctx context.Context, messages ...*Message) error {
	if len(messages) == 0 {
		return nil
	}
	raw := make([]kafka.Message, 0, len(messages))
	for _, m := range messages {
		raw = append(raw, m.raw)
	}
	return kc.reader.CommitMessages(ctx, raw...)
}

// Close 关闭消费者
func (kc *KafkaConsumer) Close() error {
	return kc.reader.Close()
}
