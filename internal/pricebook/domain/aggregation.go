package domain

import (
	"fmt"
	"iter"

	"github.com/shopspring/decimal"
)

// VWAPPrecision VWAP 结果保留的小数位数
const VWAPPrecision int32 = 4

// AggregationStrategy 价格聚合策略
// 在按执行优先级排好序的档位序列上做无状态计算
type AggregationStrategy interface {
	// CalculateVWAP 按顺序吃单，计算成交 target 数量的成交量加权平均价
	CalculateVWAP(levels iter.Seq[PriceLevel], target int64) (decimal.Decimal, error)
	// CalculateTotalQuantity 汇总价格恰好等于 price 的所有档位数量
	CalculateTotalQuantity(levels iter.Seq[PriceLevel], price decimal.Decimal) int64
}

// DefaultAggregationStrategy 默认聚合策略：四位小数，四舍五入
type DefaultAggregationStrategy struct{}

// NewDefaultAggregationStrategy 创建默认聚合策略
func NewDefaultAggregationStrategy() *DefaultAggregationStrategy {
	return &DefaultAggregationStrategy{}
}

// CalculateVWAP 计算 VWAP
// 流程：
// 1. 拒绝非正的目标数量
// 2. 依次消耗每个档位 min(剩余, 档位数量)，消耗量为 0 时停止
// 3. 仍有剩余则流动性不足
// 4. 加权总额除以目标数量，保留四位小数
func (s *DefaultAggregationStrategy) CalculateVWAP(levels iter.Seq[PriceLevel], target int64) (decimal.Decimal, error) {
	if target <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidTargetQuantity, target)
	}

	weightedSum := decimal.Zero
	remaining := target

	for level := range levels {
		take := min(remaining, level.Quantity)
		if take <= 0 {
			break
		}
		weightedSum = weightedSum.Add(level.Price.Mul(decimal.NewFromInt(take)))
		remaining -= take
	}

	if remaining > 0 {
		return decimal.Zero, fmt.Errorf("%w: requested %d, unfilled %d", ErrInsufficientLiquidity, target, remaining)
	}

	// 正数上的 half away from zero 即 half-up
	return weightedSum.DivRound(decimal.NewFromInt(target), VWAPPrecision), nil
}

// CalculateTotalQuantity 计算指定价格上的总挂单量
func (s *DefaultAggregationStrategy) CalculateTotalQuantity(levels iter.Seq[PriceLevel], price decimal.Decimal) int64 {
	var total int64
	for level := range levels {
		if level.Price.Equal(price) {
			total += level.Quantity
		}
	}
	return total
}
