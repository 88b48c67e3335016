// Package consumer 把 Kafka 报价流转换为价格簿更新
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/pricebook/internal/pricebook/domain"
	"github.com/wyfcoding/pricebook/pkg/logger"
	"github.com/wyfcoding/pricebook/pkg/mq"
)

// ErrMalformedBatch 报价批次无法解析或不合法
var ErrMalformedBatch = errors.New("malformed quote batch")

// 消费结果标签
const (
	resultApplied      = "applied"
	resultMalformed    = "malformed"
	resultUnauthorized = "unauthorized"
	resultSkipped      = "skipped"
	resultFailed       = "failed"
)

// QuoteBatchMessage 一个来源对一个品种的当前完整报价
type QuoteBatchMessage struct {
	Source     string         `json:"source"`
	Instrument string         `json:"instrument"`
	Quotes     []QuoteMessage `json:"quotes"`
}

// QuoteMessage 单条报价
type QuoteMessage struct {
	Side     string          `json:"side"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// DecodeBatch 解析并校验报价批次，每条报价继承批次的来源与品种
func DecodeBatch(payload []byte) (string, []domain.Quote, error) {
	var msg QuoteBatchMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	if msg.Source == "" {
		return "", nil, fmt.Errorf("%w: source is required", ErrMalformedBatch)
	}
	if msg.Instrument == "" {
		return "", nil, fmt.Errorf("%w: instrument is required", ErrMalformedBatch)
	}

	quotes := make([]domain.Quote, 0, len(msg.Quotes))
	for i, qm := range msg.Quotes {
		side, err := domain.ParseSide(qm.Side)
		if err != nil {
			return "", nil, fmt.Errorf("%w: quote %d: %v", ErrMalformedBatch, i, err)
		}
		if qm.Quantity < 0 {
			return "", nil, fmt.Errorf("%w: quote %d: negative quantity %d", ErrMalformedBatch, i, qm.Quantity)
		}
		quotes = append(quotes, domain.NewQuote(msg.Source, msg.Instrument, side, qm.Price, qm.Quantity))
	}
	return msg.Instrument, quotes, nil
}

// QuoteFeedConsumer 消费报价主题并更新价格簿
type QuoteFeedConsumer struct {
	reader     mq.Reader
	book       domain.PriceBook
	instrument string
	messages   *prometheus.CounterVec
}

// NewQuoteFeedConsumer 创建报价消费者，messages 可以为 nil
func NewQuoteFeedConsumer(reader mq.Reader, book domain.PriceBook, instrument string, messages *prometheus.CounterVec) *QuoteFeedConsumer {
	return &QuoteFeedConsumer{
		reader:     reader,
		book:       book,
		instrument: instrument,
		messages:   messages,
	}
}

// Run 循环拉取消息直到 ctx 取消
// 所有失败都是确定性的，处理完即提交偏移量，不重试
func (c *QuoteFeedConsumer) Run(ctx context.Context) error {
	logger.Info(ctx, "Quote feed consumer started", "instrument", c.instrument)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info(ctx, "Quote feed consumer stopped", "instrument", c.instrument)
				return nil
			}
			return fmt.Errorf("failed to fetch quote message: %w", err)
		}

		c.count(c.Handle(ctx, msg))

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to commit quote message: %w", err)
		}
	}
}

// Handle 处理单条消息，返回结果标签
func (c *QuoteFeedConsumer) Handle(ctx context.Context, msg *mq.Message) string {
	instrument, quotes, err := DecodeBatch(msg.Value)
	if err != nil {
		logger.Warn(ctx, "Dropping malformed quote batch",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return resultMalformed
	}

	if instrument != c.instrument {
		logger.Debug(ctx, "Skipping quote batch for another instrument",
			"instrument", instrument,
			"offset", msg.Offset,
		)
		return resultSkipped
	}

	if len(quotes) == 0 {
		// 空批次不会改变价格簿
		return resultSkipped
	}

	if err := c.book.Update(ctx, quotes); err != nil {
		if errors.Is(err, domain.ErrUnauthorizedSource) {
			return resultUnauthorized
		}
		logger.Error(ctx, "Failed to apply quote batch", "offset", msg.Offset, "error", err)
		return resultFailed
	}
	return resultApplied
}

func (c *QuoteFeedConsumer) count(result string) {
	if c.messages != nil {
		c.messages.WithLabelValues(result).Inc()
	}
}
