// Package audit 提供审计记录的落地实现：结构化日志与异步缓冲
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/wyfcoding/pricebook/internal/pricebook/application"
	"github.com/wyfcoding/pricebook/pkg/logger"
)

// LogSink 把审计记录写入结构化日志
type LogSink struct {
	logger *slog.Logger
}

var _ application.AuditSink = (*LogSink)(nil)

// NewLogSink 创建日志审计，l 为 nil 时使用全局 logger
func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = logger.Get()
	}
	return &LogSink{logger: l.With(slog.String("component", "audit"))}
}

// Record 写入一条审计日志
func (s *LogSink) Record(ctx context.Context, entry application.AuditEntry) {
	attrs := []any{
		slog.String("audit_id", entry.ID),
		slog.String("operation", entry.Operation),
		slog.String("detail", entry.Detail),
		slog.String("at", entry.Timestamp.Format(time.RFC3339Nano)),
	}
	if traceID := logger.TraceID(ctx); traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}
	s.logger.InfoContext(ctx, "price book operation", attrs...)
}
