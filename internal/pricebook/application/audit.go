// Package application 包含价格簿的应用层：授权门面、审计与指标装饰器
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// 审计操作名称
const (
	OperationUpdate           = "update"
	OperationReset            = "reset"
	OperationGetVWAP          = "getVwap"
	OperationGetTotalQuantity = "getTotalQuantity"
)

// AuditEntry 审计记录
type AuditEntry struct {
	// 记录 ID
	ID string
	// 发生时间
	Timestamp time.Time
	// 操作名称
	Operation string
	// 详情
	Detail string
}

// NewAuditEntry 创建审计记录
func NewAuditEntry(at time.Time, operation, detail string) AuditEntry {
	return AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: at,
		Operation: operation,
		Detail:    detail,
	}
}

// AuditSink 审计记录接收方
// 实现不得阻塞调用方，也不向调用方返回错误
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditSinkFunc 函数适配器
type AuditSinkFunc func(ctx context.Context, entry AuditEntry)

// Record 实现 AuditSink
func (f AuditSinkFunc) Record(ctx context.Context, entry AuditEntry) {
	f(ctx, entry)
}

type nopAuditSink struct{}

func (nopAuditSink) Record(context.Context, AuditEntry) {}

// SourceAuthorizer 判断来源是否允许写入价格簿
type SourceAuthorizer interface {
	IsAuthorized(source string) bool
}

// SourceAuthorizerFunc 函数适配器
type SourceAuthorizerFunc func(source string) bool

// IsAuthorized 实现 SourceAuthorizer
func (f SourceAuthorizerFunc) IsAuthorized(source string) bool {
	return f(source)
}
