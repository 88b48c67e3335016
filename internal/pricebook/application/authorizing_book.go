package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/pricebook/internal/pricebook/domain"
	"github.com/wyfcoding/pricebook/pkg/logger"
)

// AuthorizingBook 授权门面
// 拒绝未授权来源的写入，读操作直接转发，每次被接受的调用都记录审计
type AuthorizingBook struct {
	book       domain.PriceBook
	authorizer SourceAuthorizer
	audit      AuditSink
	now        func() time.Time
}

var _ domain.PriceBook = (*AuthorizingBook)(nil)

// NewAuthorizingBook 创建授权门面，audit 为 nil 时不记录审计
func NewAuthorizingBook(book domain.PriceBook, authorizer SourceAuthorizer, audit AuditSink) *AuthorizingBook {
	if audit == nil {
		audit = nopAuditSink{}
	}
	return &AuthorizingBook{
		book:       book,
		authorizer: authorizer,
		audit:      audit,
		now:        time.Now,
	}
}

// Update 校验第一条报价的来源后转发
func (a *AuthorizingBook) Update(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	source := quotes[0].Source
	if !a.authorizer.IsAuthorized(source) {
		logger.Warn(ctx, "Rejected quotes from unauthorized source",
			"source", source,
			"count", len(quotes),
		)
		return fmt.Errorf("%w: %s", domain.ErrUnauthorizedSource, source)
	}

	a.record(ctx, OperationUpdate, fmt.Sprintf("processing %d quotes from %s", len(quotes), source))
	return a.book.Update(ctx, quotes)
}

// Reset 清空价格簿
func (a *AuthorizingBook) Reset(ctx context.Context) {
	a.record(ctx, OperationReset, "resetting price book")
	a.book.Reset(ctx)
}

// GetVWAPForQuantityAndSide 计算 VWAP
func (a *AuthorizingBook) GetVWAPForQuantityAndSide(ctx context.Context, quantity int64, side domain.Side) (decimal.Decimal, error) {
	a.record(ctx, OperationGetVWAP, fmt.Sprintf("calculating VWAP for %d on %s", quantity, side))
	return a.book.GetVWAPForQuantityAndSide(ctx, quantity, side)
}

// GetTotalQuantityForPriceAndSide 查询总挂单量
func (a *AuthorizingBook) GetTotalQuantityForPriceAndSide(ctx context.Context, price decimal.Decimal, side domain.Side) int64 {
	a.record(ctx, OperationGetTotalQuantity, fmt.Sprintf("calculating total quantity at %s on %s", price, side))
	return a.book.GetTotalQuantityForPriceAndSide(ctx, price, side)
}

func (a *AuthorizingBook) record(ctx context.Context, operation, detail string) {
	a.audit.Record(ctx, NewAuditEntry(a.now(), operation, detail))
}
