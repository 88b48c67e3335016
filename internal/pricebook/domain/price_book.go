package domain

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// PriceBook 价格簿接口
// 合并订单簿与授权门面都实现该接口，可以互相包装
type PriceBook interface {
	// Reset 清空整个价格簿
	Reset(ctx context.Context)
	// Update 用一批同一来源的报价替换该来源在两边的挂单
	Update(ctx context.Context, quotes []Quote) error
	// GetVWAPForQuantityAndSide 计算指定方向成交 quantity 的 VWAP
	GetVWAPForQuantityAndSide(ctx context.Context, quantity int64, side Side) (decimal.Decimal, error)
	// GetTotalQuantityForPriceAndSide 查询指定方向、指定价格上的总挂单量
	GetTotalQuantityForPriceAndSide(ctx context.Context, price decimal.Decimal, side Side) int64
}

// ConsolidatedBook 单一品种的多来源合并订单簿
// 每个来源每边的挂单以最近一次更新为准（整边替换）
type ConsolidatedBook struct {
	mu       sync.RWMutex
	bids     *bookSide
	offers   *bookSide
	strategy AggregationStrategy
}

var _ PriceBook = (*ConsolidatedBook)(nil)

// NewConsolidatedBook 创建合并订单簿，strategy 为 nil 时使用默认聚合策略
func NewConsolidatedBook(strategy AggregationStrategy) *ConsolidatedBook {
	if strategy == nil {
		strategy = NewDefaultAggregationStrategy()
	}
	return &ConsolidatedBook{
		bids:     newBookSide(bidLess),
		offers:   newBookSide(offerLess),
		strategy: strategy,
	}
}

// Reset 清空两边的来源档位与有序视图
func (b *ConsolidatedBook) Reset(_ context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids.clear()
	b.offers.clear()
}

// Update 应用一批报价
// 整批的来源由第一条报价决定，不校验品种是否一致；
// 同一批同一方向出现重复价格时以后出现的报价为准
func (b *ConsolidatedBook) Update(_ context.Context, quotes []Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	source := quotes[0].Source
	bids := make(map[string]PriceLevel)
	offers := make(map[string]PriceLevel)
	for _, q := range quotes {
		level := PriceLevel{Source: source, Price: q.Price, Quantity: q.Quantity}
		if q.Side == SideBuy {
			bids[priceKey(q.Price)] = level
		} else {
			offers[priceKey(q.Price)] = level
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids.replace(source, bids)
	b.offers.replace(source, offers)
	return nil
}

// GetVWAPForQuantityAndSide 计算 VWAP
func (b *ConsolidatedBook) GetVWAPForQuantityAndSide(_ context.Context, quantity int64, side Side) (decimal.Decimal, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.strategy.CalculateVWAP(b.side(side).all(), quantity)
}

// GetTotalQuantityForPriceAndSide 查询指定价格的总挂单量
func (b *ConsolidatedBook) GetTotalQuantityForPriceAndSide(_ context.Context, price decimal.Decimal, side Side) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.strategy.CalculateTotalQuantity(b.side(side).all(), price)
}

// Levels 返回指定方向按执行优先级排列的档位快照
func (b *ConsolidatedBook) Levels(side Side) []PriceLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.side(side).snapshot()
}

// Sources 返回当前在指定方向有挂单的来源（升序）
func (b *ConsolidatedBook) Sources(side Side) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.side(side).sources()
}

func (b *ConsolidatedBook) side(side Side) *bookSide {
	if side == SideBuy {
		return b.bids
	}
	return b.offers
}
