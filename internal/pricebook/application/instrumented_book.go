package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/pricebook/internal/pricebook/domain"
	"github.com/wyfcoding/pricebook/pkg/metrics"
)

// 指标结果标签
const (
	resultUnauthorized          = "unauthorized"
	resultInsufficientLiquidity = "insufficient_liquidity"
	resultInvalidQuantity       = "invalid_quantity"
)

// InstrumentedBook 为价格簿操作记录 Prometheus 指标
type InstrumentedBook struct {
	next    domain.PriceBook
	metrics *metrics.Metrics
}

var _ domain.PriceBook = (*InstrumentedBook)(nil)

// NewInstrumentedBook 创建指标装饰器
func NewInstrumentedBook(next domain.PriceBook, m *metrics.Metrics) *InstrumentedBook {
	return &InstrumentedBook{next: next, metrics: m}
}

// Update 转发并记录结果
func (b *InstrumentedBook) Update(ctx context.Context, quotes []domain.Quote) error {
	start := time.Now()
	err := b.next.Update(ctx, quotes)
	b.metrics.ObserveOperation(OperationUpdate, resultOf(err), time.Since(start))
	return err
}

// Reset 转发并记录结果
func (b *InstrumentedBook) Reset(ctx context.Context) {
	start := time.Now()
	b.next.Reset(ctx)
	b.metrics.ObserveOperation(OperationReset, metrics.ResultOK, time.Since(start))
}

// GetVWAPForQuantityAndSide 转发并记录结果
func (b *InstrumentedBook) GetVWAPForQuantityAndSide(ctx context.Context, quantity int64, side domain.Side) (decimal.Decimal, error) {
	start := time.Now()
	vwap, err := b.next.GetVWAPForQuantityAndSide(ctx, quantity, side)
	b.metrics.ObserveOperation(OperationGetVWAP, resultOf(err), time.Since(start))
	return vwap, err
}

// GetTotalQuantityForPriceAndSide 转发并记录结果
func (b *InstrumentedBook) GetTotalQuantityForPriceAndSide(ctx context.Context, price decimal.Decimal, side domain.Side) int64 {
	start := time.Now()
	total := b.next.GetTotalQuantityForPriceAndSide(ctx, price, side)
	b.metrics.ObserveOperation(OperationGetTotalQuantity, metrics.ResultOK, time.Since(start))
	return total
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domain.ErrUnauthorizedSource):
		return resultUnauthorized
	case errors.Is(err, domain.ErrInsufficientLiquidity):
		return resultInsufficientLiquidity
	case errors.Is(err, domain.ErrInvalidTargetQuantity):
		return resultInvalidQuantity
	default:
		return metrics.ResultError
	}
}
