// Package metrics 提供价格簿的 Prometheus 指标与 HTTP 暴露
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/pricebook/pkg/logger"
)

// 操作结果标签
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics 指标集合
type Metrics struct {
	// 价格簿操作计数（operation, result）
	OperationsTotal *prometheus.CounterVec
	// 价格簿操作耗时（operation）
	OperationDuration *prometheus.HistogramVec
	// 因缓冲区满而丢弃的审计记录
	AuditDroppedTotal prometheus.Counter
	// 当前授权来源数量
	AuthorizedSources prometheus.Gauge
	// 行情消息消费计数（result）
	FeedMessagesTotal *prometheus.CounterVec
}

// New 创建指标实例，serviceName 作为子系统名称
func New(serviceName string) *Metrics {
	serviceName = strings.NewReplacer("-", "_", ".", "_").Replace(serviceName)
	return &Metrics{
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricebook",
			Subsystem: serviceName,
			Name:      "operations_total",
			Help:      "Total price book operations by operation and result",
		}, []string{"operation", "result"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pricebook",
			Subsystem: serviceName,
			Name:      "operation_duration_seconds",
			Help:      "Price book operation duration in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"operation"}),
		AuditDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pricebook",
			Subsystem: serviceName,
			Name:      "audit_dropped_total",
			Help:      "Audit entries dropped because the sink buffer was full",
		}),
		AuthorizedSources: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pricebook",
			Subsystem: serviceName,
			Name:      "authorized_sources",
			Help:      "Number of sources currently allowed to update the book",
		}),
		FeedMessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricebook",
			Subsystem: serviceName,
			Name:      "feed_messages_total",
			Help:      "Quote feed messages consumed by result",
		}, []string{"result"}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.OperationsTotal,
		m.OperationDuration,
		m.AuditDroppedTotal,
		m.AuthorizedSources,
		m.FeedMessagesTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return nil
}

// ObserveOperation 记录一次价格簿操作
func (m *Metrics) ObserveOperation(operation, result string, elapsed time.Duration) {
	m.OperationsTotal.WithLabelValues(operation, result).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Server Prometheus HTTP 服务
type Server struct {
	srv *http.Server
}

// NewServer 创建指标 HTTP 服务
func NewServer(port int, path string, gatherer prometheus.Gatherer) *Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run 启动服务，ctx 取消时优雅关闭
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting Prometheus HTTP server", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
