package audit

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wyfcoding/pricebook/internal/pricebook/application"
)

type pending struct {
	ctx   context.Context
	entry application.AuditEntry
}

// AsyncSink 用有界缓冲区把审计写入与调用方解耦
// 缓冲区满时丢弃记录并计数，不阻塞价格簿
type AsyncSink struct {
	next    application.AuditSink
	queue   chan pending
	dropped prometheus.Counter

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ application.AuditSink = (*AsyncSink)(nil)

// NewAsyncSink 创建异步审计并启动后台写入，dropped 可以为 nil
func NewAsyncSink(next application.AuditSink, bufferSize int, dropped prometheus.Counter) *AsyncSink {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	s := &AsyncSink{
		next:    next,
		queue:   make(chan pending, bufferSize),
		dropped: dropped,
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

// Record 入队一条审计记录
func (s *AsyncSink) Record(ctx context.Context, entry application.AuditEntry) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.drop()
		return
	}
	select {
	case s.queue <- pending{ctx: context.WithoutCancel(ctx), entry: entry}:
	default:
		s.drop()
	}
}

// Close 停止接收并写完缓冲区中的记录
func (s *AsyncSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *AsyncSink) loop() {
	defer s.wg.Done()
	for p := range s.queue {
		s.next.Record(p.ctx, p.entry)
	}
}

func (s *AsyncSink) drop() {
	if s.dropped != nil {
		s.dropped.Inc()
	}
}
