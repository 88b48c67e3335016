// Package domain 包含聚合价格簿的领域模型：报价、价格档位、聚合策略与多来源合并订单簿
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side 买卖方向
type Side string

const (
	// SideBuy 买方（bids）
	SideBuy Side = "BUY"
	// SideSell 卖方（offers）
	SideSell Side = "SELL"
)

// ParseSide 解析买卖方向（大小写不敏感）
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(SideBuy):
		return SideBuy, nil
	case string(SideSell):
		return SideSell, nil
	default:
		return "", fmt.Errorf("unknown side: %q", s)
	}
}

func (s Side) String() string {
	return string(s)
}

// Quote 报价消息
// 代表某个流动性来源在某个方向、某个价格上的挂单数量
type Quote struct {
	// 来源标识（如 LP1）
	Source string
	// 交易品种（如 USDINR）
	Instrument string
	// 买卖方向
	Side Side
	// 价格
	Price decimal.Decimal
	// 数量
	Quantity int64
}

// NewQuote 创建报价
func NewQuote(source, instrument string, side Side, price decimal.Decimal, quantity int64) Quote {
	return Quote{
		Source:     source,
		Instrument: instrument,
		Side:       side,
		Price:      price,
		Quantity:   quantity,
	}
}

// PriceLevel 价格档位
// 同价同量但来源不同的档位是不同的实体
type PriceLevel struct {
	// 来源标识
	Source string
	// 价格
	Price decimal.Decimal
	// 数量
	Quantity int64
}

// priceKey 返回价格的规范化键，数值相等的价格（82.15 与 82.1500）得到同一个键
func priceKey(p decimal.Decimal) string {
	return p.String()
}
